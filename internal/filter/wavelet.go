package filter

import "math"

// db8Lo and db8Hi are the Daubechies-8 decomposition taps (also used,
// unmodified, for reconstruction: the high-pass array already carries
// the quadrature-mirror sign flip and is listed horizontally reversed
// relative to the low-pass array).
var db8Lo = []float64{
	-0.00011747678400228192, 0.0006754494059985568,
	-0.0003917403729959771, -0.00487035299301066,
	0.008746094047015655, 0.013981027917015516,
	-0.04408825393106472, -0.01736930100202211,
	0.128747426620186, 0.00047248457399797254,
	-0.2840155429624281, -0.015829105256023893,
	0.5853546836548691, 0.6756307362980128,
	0.3128715909144659, 0.05441584224308161,
}

var db8Hi = []float64{
	-0.05441584224308161, 0.3128715909144659,
	-0.6756307362980128, 0.5853546836548691,
	0.015829105256023893, -0.2840155429624281,
	-0.00047248457399797254, 0.128747426620186,
	0.01736930100202211, -0.04408825393106472,
	-0.013981027917015516, 0.008746094047015655,
	0.00487035299301066, -0.0003917403729959771,
	-0.0006754494059985568, -0.00011747678400228192,
}

// waveletLevels picks the deepest dyadic decomposition that still
// leaves at least one full filter-length window per band, mirroring
// the original's data_len/(taps-1) sizing.
func waveletLevels(dataLen int) int {
	denom := dataLen / (len(db8Lo) - 1)
	if denom <= 0 {
		return 0
	}
	return int(math.Log2(float64(denom)))
}

// transformOneLevel replaces buf (even length) in place with
// [approximation, detail] using a periodized orthogonal filter bank.
func transformOneLevel(buf, lo, hi []float64) {
	n := len(buf)
	half := n / 2
	out := make([]float64, n)
	for k := 0; k < half; k++ {
		var a, d float64
		for t := 0; t < len(lo); t++ {
			idx := (2*k + t) % n
			a += lo[t] * buf[idx]
			d += hi[t] * buf[idx]
		}
		out[k] = a
		out[half+k] = d
	}
	copy(buf, out)
}

// inverseOneLevel is the adjoint of transformOneLevel.
func inverseOneLevel(buf, lo, hi []float64) {
	n := len(buf)
	half := n / 2
	out := make([]float64, n)
	for k := 0; k < half; k++ {
		a, d := buf[k], buf[half+k]
		for t := 0; t < len(lo); t++ {
			idx := (2*k + t) % n
			out[idx] += lo[t]*a + hi[t]*d
		}
	}
	copy(buf, out)
}

func forwardMultilevel(data []float64, levels int) {
	n := len(data)
	for lvl := 0; lvl < levels; lvl++ {
		transformOneLevel(data[:n>>lvl], db8Lo, db8Hi)
	}
}

func inverseMultilevel(data []float64, levels int) {
	n := len(data)
	for lvl := levels - 1; lvl >= 0; lvl-- {
		inverseOneLevel(data[:n>>lvl], db8Lo, db8Hi)
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// waveletSoftThreshold decomposes data with a Daubechies-8 filter
// bank, soft-thresholds every detail band at thresholdRatio*max|detail|
// and reconstructs (§4.5 Wavelet). The returned slice covers only the
// longest dyadic-aligned prefix of data; any trailing remainder is
// dropped, matching the original decomposition sizing.
func waveletSoftThreshold(data []float64, thresholdRatio float64) []float64 {
	levels := waveletLevels(len(data))
	level2 := 1 << levels
	filterLen := (len(data) / level2) * level2

	buf := make([]float64, filterLen)
	copy(buf, data[:filterLen])

	forwardMultilevel(buf, levels)

	start := filterLen >> levels
	for i := 0; i < levels; i++ {
		end := start * 2
		var m float64
		for _, v := range buf[start:end] {
			if a := math.Abs(v); a > m {
				m = a
			}
		}
		threshold := m * thresholdRatio
		for j := start; j < end; j++ {
			v := buf[j]
			buf[j] = sign(v) * math.Max(math.Abs(v)-threshold, 0)
		}
		start = end
	}

	inverseMultilevel(buf, levels)
	return buf
}

// clampByte saturates v to the [0,255] range a Green channel sample
// occupies, truncating any fractional part.
func clampByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}
