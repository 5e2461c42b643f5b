package setting

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.db")
	st, err := OpenStore(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStoreCreateAndLoad(t *testing.T) {
	st := newTestStore(t)
	s := newLoadedSetting(t)
	require.NoError(t, s.SynchronizeVideoAndDaq(10, 20))
	require.NoError(t, s.SetArea(Area{Top: 1, Left: 2, Height: 100, Width: 200}))
	require.NoError(t, s.SetThermocouples([]Thermocouple{{ColumnIndex: 0, PosY: 5, PosX: -3}, {ColumnIndex: 1}}))
	require.NoError(t, s.SetInterpolationMethod(InterpMethod{Kind: InterpHorizontal}))
	require.NoError(t, s.SetFilterMethod(FilterMethod{Kind: FilterMedian, Window: 7}))
	require.NoError(t, s.SetPeakTemperature(20, 50, 35))
	require.NoError(t, s.SetSolidThermalConductivity(0.2))
	require.NoError(t, s.SetSolidThermalDiffusivity(1e-7))
	require.NoError(t, s.SetCharacteristicLength(0.01))
	require.NoError(t, s.SetAirThermalConductivity(0.026))

	id, err := st.Create(s)
	require.NoError(t, err)
	require.NotZero(t, id)

	loaded, err := st.Load(id)
	require.NoError(t, err)

	require.Equal(t, s.Name, loaded.Name)
	require.Equal(t, s.VideoPath, loaded.VideoPath)
	require.Equal(t, s.DaqPath, loaded.DaqPath)
	require.NotNil(t, loaded.StartFrame)
	require.Equal(t, *s.StartFrame, *loaded.StartFrame)
	require.NotNil(t, loaded.Area)
	require.Equal(t, *s.Area, *loaded.Area)
	require.Equal(t, s.Thermocouples, loaded.Thermocouples)
	require.NotNil(t, loaded.InterpMethod)
	require.Equal(t, *s.InterpMethod, *loaded.InterpMethod)
	require.Equal(t, s.FilterMethod, loaded.FilterMethod)
	require.Equal(t, s.Physical, loaded.Physical)
	require.Nil(t, loaded.CompletedAt)
}

func TestStoreCreateMinimal(t *testing.T) {
	st := newTestStore(t)
	var s Setting
	require.NoError(t, s.SetName("bare"))
	require.NoError(t, s.SetSaveRootDir("/tmp/bare"))

	id, err := st.Create(s)
	require.NoError(t, err)

	loaded, err := st.Load(id)
	require.NoError(t, err)
	require.Equal(t, "bare", loaded.Name)
	require.Empty(t, loaded.VideoPath)
	require.Nil(t, loaded.StartFrame)
	require.Nil(t, loaded.Area)
	require.Empty(t, loaded.Thermocouples)
	require.Nil(t, loaded.InterpMethod)
}

func TestStoreSaveUpdatesRecord(t *testing.T) {
	st := newTestStore(t)
	s := newLoadedSetting(t)
	id, err := st.Create(s)
	require.NoError(t, err)

	require.NoError(t, s.SetName("renamed"))
	require.NoError(t, st.Save(id, s))

	loaded, err := st.Load(id)
	require.NoError(t, err)
	require.Equal(t, "renamed", loaded.Name)
}

func TestStoreDelete(t *testing.T) {
	st := newTestStore(t)
	s := newLoadedSetting(t)
	id, err := st.Create(s)
	require.NoError(t, err)

	require.NoError(t, st.Delete(id))

	_, err = st.Load(id)
	require.Error(t, err)
}
