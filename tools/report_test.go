package tools

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/yaml.v2"
)

func TestWriteReport(t *testing.T) {
	d, err := IntRange(-1, 2)
	require.NoError(t, err)

	c := CheckExhaustive(signArms(), d, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, c))

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "-1..2", got["domain"])
	assert.Equal(t, false, got["exhaustive"])
	assert.Equal(t, []interface{}{"2"}, got["gaps"])
}
