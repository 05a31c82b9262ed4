package util

import (
	"bytes"
	"context"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func init() {
	logrus.SetOutput(ioutil.Discard)
}

func TestExecuteCommand(t *testing.T) {
	t.Run("empty command", func(t *testing.T) {
		_, err := ExecuteCommand(context.Background(), []string{}, nil, nil)
		assert.Error(t, err, "should require a command")
	})

	t.Run("captures stdout and stdin", func(t *testing.T) {
		out, err := ExecuteCommand(context.Background(), []string{"cat"}, nil, strings.NewReader("hello"))
		assert.NoError(t, err)
		assert.Equal(t, "hello", out.Stdout)
	})

	t.Run("captures stderr on failure", func(t *testing.T) {
		out, err := ExecuteCommand(context.Background(), []string{"sh", "-c", "echo broken >&2; exit 3"}, nil, nil)
		assert.Error(t, err)
		assert.Equal(t, "broken\n", out.Stderr)
	})

	t.Run("passes environment", func(t *testing.T) {
		out, err := ExecuteCommand(context.Background(), []string{"sh", "-c", "printf %s \"$ARCHSTRAP_TEST\""}, []string{"ARCHSTRAP_TEST=value"}, nil)
		assert.NoError(t, err)
		assert.Equal(t, "value", out.Stdout)
	})
}

func TestStreamCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	streams := Streams{In: strings.NewReader("from operator"), Out: &out, Err: &errOut}

	err := StreamCommand(context.Background(), []string{"cat"}, streams, nil)
	assert.NoError(t, err)
	assert.Equal(t, "from operator", out.String(), "should read operator input when no stdin is given")

	out.Reset()
	err = StreamCommand(context.Background(), []string{"cat"}, streams, strings.NewReader("explicit"))
	assert.NoError(t, err)
	assert.Equal(t, "explicit", out.String())

	err = StreamCommand(context.Background(), []string{"false"}, streams, nil)
	assert.Error(t, err, "non-zero exit should be reported")
}
