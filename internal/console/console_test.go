package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLineTrims(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("  A123456789  \n"), &out)

	line, err := c.ReadLine("輸入身分證字號：")
	require.NoError(t, err)
	assert.Equal(t, "A123456789", line)
	assert.Contains(t, out.String(), "輸入身分證字號：")
}

func TestReadLineEOFWithoutNewline(t *testing.T) {
	c := New(strings.NewReader("partial"), &bytes.Buffer{})

	line, err := c.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "partial", line)
}

func TestConfirm(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"whatever\n", false},
	}
	for _, tc := range cases {
		c := New(strings.NewReader(tc.input), &bytes.Buffer{})
		ok, err := c.Confirm("繼續嗎？")
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, "input %q", tc.input)
	}
}

func TestSelectIndex(t *testing.T) {
	c := New(strings.NewReader("3\n"), &bytes.Buffer{})
	index, err := c.SelectIndex("選擇車次", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, index)
}

func TestSelectIndexDefaultOnBlank(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("\n"), &out)
	index, err := c.SelectIndex("選擇車次", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, index)
	assert.Contains(t, out.String(), "預設：1")
}

func TestSelectIndexRejectsGarbage(t *testing.T) {
	c := New(strings.NewReader("abc\n"), &bytes.Buffer{})
	_, err := c.SelectIndex("選擇車次", 1)
	assert.Error(t, err)
}
