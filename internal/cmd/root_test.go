package cmd

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logrus.SetOutput(ioutil.Discard)
}

func TestMainCommand_Subcommands(t *testing.T) {
	cmd := MainCommand()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"install", "check", "layout", "config"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestMainCommand_UnknownConfigFile(t *testing.T) {
	cmd := MainCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"layout", "--config", "testdata/does-not-exist.yml"})

	assert.Error(t, cmd.ExecuteContext(context.Background()), "an explicit config file must exist")
}

func TestGlobalOptions_CloseWithoutSetup(t *testing.T) {
	opts := &globalOptions{}

	assert.NoError(t, opts.close(context.Background()))
}

func TestExecute_TeardownAfterFailedCommand(t *testing.T) {
	t.Setenv("ARCHSTRAP_LOG_FILE", filepath.Join(t.TempDir(), "archstrap.log"))

	opts := &globalOptions{}
	root := rootCommand(opts)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	var shutdownCalled bool
	var logFile *os.File
	root.AddCommand(&cobra.Command{
		Use: "failing",
		RunE: func(cmd *cobra.Command, args []string) error {
			logFile = opts.logFile
			flush := opts.shutdown
			opts.shutdown = func(ctx context.Context) error {
				shutdownCalled = true
				return flush(ctx)
			}
			return errors.New("step format failed")
		},
	})
	root.SetArgs([]string{"failing"})

	err := execute(context.Background(), root, opts)

	assert.EqualError(t, err, "step format failed")
	assert.True(t, shutdownCalled, "traces should be flushed after a failed command")
	require.NotNil(t, logFile)
	assert.ErrorIs(t, logFile.Close(), os.ErrClosed, "the log file should be closed after a failed command")
}

func TestGlobalOptions_CloseTwice(t *testing.T) {
	calls := 0
	opts := &globalOptions{shutdown: func(context.Context) error {
		calls++
		return nil
	}}

	assert.NoError(t, opts.close(context.Background()))
	assert.NoError(t, opts.close(context.Background()))
	assert.Equal(t, 1, calls)
}
