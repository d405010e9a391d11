package licensekey

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGenerateFrom_Deterministic(t *testing.T) {
	src := bytes.NewReader([]byte{0xab, 0x12, 0xcd, 0x34, 0xef, 0x56, 0x78, 0x90})

	key, err := GenerateFrom(src)
	require.NoError(t, err)
	assert.Equal(t, "ab12-cd34-ef56-7890", key)
}

func TestGenerateFrom_ShortRead(t *testing.T) {
	_, err := GenerateFrom(bytes.NewReader([]byte{0x01, 0x02}))
	require.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestGenerateFrom_ReaderError(t *testing.T) {
	_, err := GenerateFrom(failingReader{})
	require.ErrorContains(t, err, "entropy unavailable")
}

func TestGenerate_Format(t *testing.T) {
	for i := 0; i < 50; i++ {
		key, err := Generate()
		require.NoError(t, err)
		require.True(t, Valid(key), "unexpected key format %q", key)
	}
}

func TestGenerate_NotConstant(t *testing.T) {
	first, err := Generate()
	require.NoError(t, err)
	second, err := Generate()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValid(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"ab12-cd34-ef56-7890", true},
		{"0000-0000-0000-0000", true},
		{"AB12-CD34-EF56-7890", false},
		{"ab12cd34ef567890", false},
		{"ab12-cd34-ef56", false},
		{"ab12-cd34-ef56-789g", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.key), tt.key)
	}
}
