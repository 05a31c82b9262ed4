package storage

import (
	"context"
	"errors"
	"io/ioutil"
	"strings"
	"testing"

	mock_storage "github.com/archstrap/archstrap/internal/storage/mocks"
	"github.com/archstrap/archstrap/internal/storage/types"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logrus.SetOutput(ioutil.Discard)
}

const testDisk = "/dev/sdx"

func confirmWith(answer bool, called *bool) ConfirmFunc {
	return func(disk string) (bool, error) {
		*called = true
		return answer, nil
	}
}

func TestPrepareDisk_EmptyDisk(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	table := strings.NewReader("label: gpt")
	mockStorage := mock_storage.NewMockStorage(ctrl)
	gomock.InOrder(
		mockStorage.EXPECT().HasPartitions(ctx, testDisk).Return(false, nil),
		mockStorage.EXPECT().Partition(ctx, testDisk, table).Return(nil),
	)

	var asked bool
	err := PrepareDisk(ctx, mockStorage, testDisk, confirmWith(true, &asked), table)

	assert.NoError(t, err)
	assert.False(t, asked, "should not ask for confirmation on an empty disk")
}

func TestPrepareDisk_PartitionedDiskConfirmed(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	table := strings.NewReader("label: gpt")
	mockStorage := mock_storage.NewMockStorage(ctrl)
	gomock.InOrder(
		mockStorage.EXPECT().HasPartitions(ctx, testDisk).Return(true, nil),
		mockStorage.EXPECT().Wipe(ctx, testDisk).Return(nil),
		mockStorage.EXPECT().Partition(ctx, testDisk, table).Return(nil),
	)

	var asked bool
	err := PrepareDisk(ctx, mockStorage, testDisk, confirmWith(true, &asked), table)

	assert.NoError(t, err)
	assert.True(t, asked)
}

func TestPrepareDisk_PartitionedDiskDeclined(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Any call beyond the probe fails the test, the disk must stay untouched.
	mockStorage := mock_storage.NewMockStorage(ctrl)
	mockStorage.EXPECT().HasPartitions(ctx, testDisk).Return(true, nil)

	var asked bool
	err := PrepareDisk(ctx, mockStorage, testDisk, confirmWith(false, &asked), strings.NewReader(""))

	assert.ErrorIs(t, err, ErrDeclined)
	assert.True(t, asked)
}

func TestPrepareDisk_Errors(t *testing.T) {
	ctx := context.Background()
	failure := errors.New("error")

	tests := []struct {
		name   string
		expect func(m *mock_storage.MockStorage)
	}{
		{
			name: "Bad case: probe fails",
			expect: func(m *mock_storage.MockStorage) {
				m.EXPECT().HasPartitions(ctx, testDisk).Return(false, failure)
			},
		},
		{
			name: "Bad case: wipe fails",
			expect: func(m *mock_storage.MockStorage) {
				gomock.InOrder(
					m.EXPECT().HasPartitions(ctx, testDisk).Return(true, nil),
					m.EXPECT().Wipe(ctx, testDisk).Return(failure),
				)
			},
		},
		{
			name: "Bad case: partitioning fails",
			expect: func(m *mock_storage.MockStorage) {
				gomock.InOrder(
					m.EXPECT().HasPartitions(ctx, testDisk).Return(false, nil),
					m.EXPECT().Partition(ctx, testDisk, gomock.Any()).Return(failure),
				)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := mock_storage.NewMockStorage(ctrl)
			tt.expect(mockStorage)

			var asked bool
			err := PrepareDisk(ctx, mockStorage, testDisk, confirmWith(true, &asked), strings.NewReader(""))

			assert.ErrorIs(t, err, failure)
		})
	}
}

func TestDetectPartitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		devices *types.BlockDevices
		want    *Partitions
		wantErr bool
	}{
		{
			name:    "Bad case: no devices",
			devices: &types.BlockDevices{},
			wantErr: true,
		},
		{
			name: "Bad case: single partition",
			devices: &types.BlockDevices{BlockDevices: []types.BlockDevice{
				{Name: "sdx", Children: []types.BlockDevice{{Name: "sdx1"}}},
			}},
			wantErr: true,
		},
		{
			name: "Good case: sata naming",
			devices: &types.BlockDevices{BlockDevices: []types.BlockDevice{
				{Name: "sdx", Children: []types.BlockDevice{{Name: "sdx1"}, {Name: "sdx2"}}},
			}},
			want: &Partitions{EFI: "/dev/sdx1", Root: "/dev/sdx2"},
		},
		{
			name: "Good case: nvme naming",
			devices: &types.BlockDevices{BlockDevices: []types.BlockDevice{
				{Name: "nvme0n1", Children: []types.BlockDevice{{Name: "nvme0n1p1"}, {Name: "nvme0n1p2"}}},
			}},
			want: &Partitions{EFI: "/dev/nvme0n1p1", Root: "/dev/nvme0n1p2"},
		},
		{
			name: "Good case: report order wins over names",
			devices: &types.BlockDevices{BlockDevices: []types.BlockDevice{
				{Name: "mmcblk0", Children: []types.BlockDevice{{Name: "mmcblk0p2"}, {Name: "mmcblk0p1"}, {Name: "mmcblk0p3"}}},
			}},
			want: &Partitions{EFI: "/dev/mmcblk0p2", Root: "/dev/mmcblk0p1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := mock_storage.NewMockStorage(ctrl)
			mockStorage.EXPECT().BlockDevices(ctx, testDisk).Return(tt.devices, nil)

			got, err := DetectPartitions(ctx, mockStorage, testDisk)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	parts := &Partitions{EFI: "/dev/sdx1", Root: "/dev/sdx2"}
	mockStorage := mock_storage.NewMockStorage(ctrl)
	gomock.InOrder(
		mockStorage.EXPECT().FormatEFI(ctx, parts.EFI).Return(nil),
		mockStorage.EXPECT().FormatRoot(ctx, parts.Root).Return(nil),
	)

	assert.NoError(t, Format(ctx, mockStorage, parts))
}

func TestFormat_EFIError(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	parts := &Partitions{EFI: "/dev/sdx1", Root: "/dev/sdx2"}
	mockStorage := mock_storage.NewMockStorage(ctrl)
	mockStorage.EXPECT().FormatEFI(ctx, parts.EFI).Return(errors.New("error"))

	assert.Error(t, Format(ctx, mockStorage, parts), "root should not be formatted after an EFI failure")
}

func TestCreateSubvolumes(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mock_storage.NewMockStorage(ctrl)
	gomock.InOrder(
		mockStorage.EXPECT().Mount(ctx, "/dev/sdx2", "/mnt", nil).Return(nil),
		mockStorage.EXPECT().CreateSubvolume(ctx, "/mnt/@").Return(nil),
		mockStorage.EXPECT().CreateSubvolume(ctx, "/mnt/@home").Return(nil),
		mockStorage.EXPECT().CreateSubvolume(ctx, "/mnt/@snapshots").Return(nil),
		mockStorage.EXPECT().CreateSubvolume(ctx, "/mnt/@var_log").Return(nil),
		mockStorage.EXPECT().CreateSubvolume(ctx, "/mnt/@pkg").Return(nil),
		mockStorage.EXPECT().Unmount(ctx, "/mnt").Return(nil),
	)

	assert.NoError(t, CreateSubvolumes(ctx, mockStorage, "/dev/sdx2", "/mnt", DefaultLayout()))
}

func TestCreateSubvolumes_CreateError(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failure := errors.New("error")
	mockStorage := mock_storage.NewMockStorage(ctrl)
	gomock.InOrder(
		mockStorage.EXPECT().Mount(ctx, "/dev/sdx2", "/mnt", nil).Return(nil),
		mockStorage.EXPECT().CreateSubvolume(ctx, "/mnt/@").Return(failure),
		mockStorage.EXPECT().Unmount(ctx, "/mnt").Return(nil),
	)

	err := CreateSubvolumes(ctx, mockStorage, "/dev/sdx2", "/mnt", DefaultLayout())

	assert.ErrorIs(t, err, failure)
}

func TestCreateSubvolumes_InvalidLayout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mock_storage.NewMockStorage(ctrl)
	layout := Layout{{Label: "@home", MountPoint: "/home"}}

	assert.Error(t, CreateSubvolumes(context.Background(), mockStorage, "/dev/sdx2", "/mnt", layout))
}

func TestMountSubvolumes(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fs := afero.NewMemMapFs()
	opts := []string{"compress=zstd"}
	mockStorage := mock_storage.NewMockStorage(ctrl)
	gomock.InOrder(
		mockStorage.EXPECT().Mount(ctx, "/dev/sdx2", "/mnt", []string{"subvol=@", "compress=zstd"}).Return(nil),
		mockStorage.EXPECT().Mount(ctx, "/dev/sdx2", "/mnt/home", []string{"subvol=@home", "compress=zstd"}).Return(nil),
		mockStorage.EXPECT().Mount(ctx, "/dev/sdx2", "/mnt/.snapshots", []string{"subvol=@snapshots", "compress=zstd"}).Return(nil),
		mockStorage.EXPECT().Mount(ctx, "/dev/sdx2", "/mnt/var/log", []string{"subvol=@var_log", "compress=zstd"}).Return(nil),
		mockStorage.EXPECT().Mount(ctx, "/dev/sdx2", "/mnt/var/cache/pacman/pkg", []string{"subvol=@pkg", "compress=zstd"}).Return(nil),
	)

	err := MountSubvolumes(ctx, mockStorage, fs, "/dev/sdx2", "/mnt", DefaultLayout(), opts)
	require.NoError(t, err)

	for _, dir := range []string{"/mnt/home", "/mnt/.snapshots", "/mnt/var/log", "/mnt/var/cache/pacman/pkg"} {
		exists, err := afero.DirExists(fs, dir)
		assert.NoError(t, err)
		assert.True(t, exists, "mount point %s should have been created", dir)
	}
}

func TestMountSubvolumes_MountError(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mock_storage.NewMockStorage(ctrl)
	gomock.InOrder(
		mockStorage.EXPECT().Mount(ctx, "/dev/sdx2", "/mnt", []string{"subvol=@"}).Return(nil),
		mockStorage.EXPECT().Mount(ctx, "/dev/sdx2", "/mnt/home", []string{"subvol=@home"}).Return(errors.New("error")),
	)

	err := MountSubvolumes(ctx, mockStorage, afero.NewMemMapFs(), "/dev/sdx2", "/mnt", DefaultLayout(), nil)

	assert.Error(t, err)
}

func TestMountEFI(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fs := afero.NewMemMapFs()
	mockStorage := mock_storage.NewMockStorage(ctrl)
	mockStorage.EXPECT().Mount(ctx, "/dev/sdx1", "/mnt/efi", nil).Return(nil)

	require.NoError(t, MountEFI(ctx, mockStorage, fs, "/dev/sdx1", "/mnt"))

	exists, err := afero.DirExists(fs, "/mnt/efi")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestDescribe(t *testing.T) {
	devices := &types.BlockDevices{BlockDevices: []types.BlockDevice{
		{Name: "sdx", Type: "disk", Size: 1 << 30, Children: []types.BlockDevice{
			{Name: "sdx1", Type: "part", Size: 512 << 20},
		}},
	}}

	assert.Equal(t, []string{"/dev/sdx disk 1.0 GiB", "  /dev/sdx1 part 512 MiB"}, Describe(devices))
}
