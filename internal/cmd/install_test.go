package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	mock_prompt "github.com/archstrap/archstrap/internal/prompt/mocks"
	mock_storage "github.com/archstrap/archstrap/internal/storage/mocks"

	"github.com/archstrap/archstrap/internal/config"
	"github.com/archstrap/archstrap/internal/i18n"
	"github.com/archstrap/archstrap/internal/installer"

	"github.com/golang/mock/gomock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func expectCollect(p *mock_prompt.MockPrompter) {
	gomock.InOrder(
		p.EXPECT().Input(i18n.DiskPrompt).Return("/dev/sdx", nil),
		p.EXPECT().Input(i18n.HostnamePrompt).Return("archbox", nil),
		p.EXPECT().Input(i18n.UsernamePrompt).Return("alice", nil),
		p.EXPECT().Password(i18n.PasswordPrompt).Return("secret123", nil),
		p.EXPECT().Password(i18n.RepeatPasswordPrompt).Return("secret123", nil),
	)
}

func TestRunInstall_DeclinedIsCleanExit(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := mock_prompt.NewMockPrompter(ctrl)
	s := mock_storage.NewMockStorage(ctrl)
	expectCollect(p)
	gomock.InOrder(
		s.EXPECT().HasPartitions(gomock.Any(), "/dev/sdx").Return(true, nil),
		p.EXPECT().Confirm(gomock.Any(), false).Return(false, nil),
		p.EXPECT().Notify(i18n.Aborting),
	)

	inst := &installer.Installer{
		Config:   &config.Config{MountRoot: "/mnt", EFISize: "512MB"},
		Storage:  s,
		Prompter: p,
		Fs:       afero.NewMemMapFs(),
		Out:      &bytes.Buffer{},
	}

	assert.NoError(t, runInstall(ctx, p, inst))
}

func TestRunInstall_StepFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := mock_prompt.NewMockPrompter(ctrl)
	s := mock_storage.NewMockStorage(ctrl)
	expectCollect(p)
	s.EXPECT().HasPartitions(gomock.Any(), "/dev/sdx").Return(false, errors.New("error"))

	inst := &installer.Installer{
		Config:   &config.Config{MountRoot: "/mnt", EFISize: "512MB"},
		Storage:  s,
		Prompter: p,
		Fs:       afero.NewMemMapFs(),
		Out:      &bytes.Buffer{},
	}

	err := runInstall(ctx, p, inst)

	var stepErr *installer.StepError
	assert.ErrorAs(t, err, &stepErr)
}

func TestRunInstall_CollectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := mock_prompt.NewMockPrompter(ctrl)
	p.EXPECT().Input(i18n.DiskPrompt).Return("", errors.New("no answer given"))

	assert.Error(t, runInstall(context.Background(), p, &installer.Installer{}))
}
