package core

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tlc-project/tlc-core/internal/colormap"
	"github.com/tlc-project/tlc-core/internal/security"
	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// writeArtifacts mirrors the active Setting and its Solve result to
// up to three files under save_root_dir (§6, §12 item 1):
//
//	config/<name>.json  — Setting snapshot
//	data/<name>-nu2.npy — Nu2 as a 2-D float64 array
//	plots/<name>-nu2.png — palette-mapped Nu2, written only once a
//	                       color range has been set
//
// Every write lands atomically: the content is staged at a
// uuid-suffixed temp name in the same directory, then renamed over the
// final path, so a reader never observes a partial file.
func (gs *GlobalState) writeArtifacts() error {
	solve, err := gs.freshSolve()
	if err != nil {
		return err
	}
	if gs.Setting.SaveRootDir == "" {
		return &tlcerrors.InvalidArgumentError{Field: "save_root_dir", Reason: "unset"}
	}
	name := security.SanitizeFilename(gs.Setting.Name)

	configJSON, err := json.MarshalIndent(gs.Setting, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal setting snapshot: %w", err)
	}
	if err := gs.writeArtifactFile(filepath.Join("config", name+".json"), configJSON); err != nil {
		return err
	}

	res := solve.Result
	npy, err := encodeNu2Npy(res.Nu2, res.CalH, res.CalW)
	if err != nil {
		return fmt.Errorf("encode nu2 npy: %w", err)
	}
	if err := gs.writeArtifactFile(filepath.Join("data", name+"-nu2.npy"), npy); err != nil {
		return err
	}

	if solve.HasRange {
		png, err := colormap.Render(res.Nu2, res.CalH, res.CalW, solve.VMin, solve.VMax)
		if err != nil {
			return fmt.Errorf("render nu2 plot: %w", err)
		}
		if err := gs.writeArtifactFile(filepath.Join("plots", name+"-nu2.png"), png); err != nil {
			return err
		}
	}
	return nil
}

// writeArtifactFile validates relPath resolves inside save_root_dir,
// then atomically writes data there.
func (gs *GlobalState) writeArtifactFile(relPath string, data []byte) error {
	finalPath := filepath.Join(gs.Setting.SaveRootDir, relPath)
	if err := security.ValidatePathWithinDirectory(finalPath, gs.Setting.SaveRootDir); err != nil {
		return err
	}
	if err := gs.FS.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	tmpPath := finalPath + "." + uuid.NewString() + ".tmp"
	if err := gs.FS.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("stage artifact %s: %w", relPath, err)
	}
	if err := gs.FS.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("publish artifact %s: %w", relPath, err)
	}
	return nil
}

// encodeNu2Npy writes values (row-major, height*width) as a NumPy
// .npy v1.0 file: an 8-byte magic+version header, a dict-literal
// header padded to a 64-byte boundary, then raw little-endian float64
// data in C order. No third-party npy writer exists anywhere in the
// example pack, and this is as small a wire format as image/jpeg's
// own marker stream; §11 treats it the same way.
func encodeNu2Npy(values []float64, height, width int) ([]byte, error) {
	if len(values) != height*width {
		return nil, fmt.Errorf("nu2 has %d values, want %d for shape (%d, %d)", len(values), height*width, height, width)
	}
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d), }", height, width)
	const preludeLen = 10 // magic(6) + version(2) + header-length(2)
	pad := 64 - (preludeLen+len(header)+1)%64
	if pad == 64 {
		pad = 0
	}
	header += spaces(pad) + "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.WriteByte(1) // major version
	buf.WriteByte(0) // minor version
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(header))); err != nil {
		return nil, err
	}
	buf.WriteString(header)
	if err := binary.Write(&buf, binary.LittleEndian, values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
