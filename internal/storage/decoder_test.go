package storage

import (
	"embed"
	"path"
	"strings"
	"testing"

	"github.com/archstrap/archstrap/internal/storage/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/decoder
var testDataFS embed.FS

const testDataDir = "testdata/decoder"

func TestCommandDecoder_DecodeBlockDevices(t *testing.T) {
	// testPrefix is the prefix used to load test data files from testDataFS
	testPrefix := path.Join(testDataDir, "TestCommandDecoder_DecodeBlockDevices-")

	tests := []struct {
		name         string
		raw          string
		testFileName string
		wantDevices  *types.BlockDevices
		wantErr      bool
	}{
		{
			name:    "Bad case: empty input",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "Bad case: garbage input",
			raw:     "abcdefghijklmnopqrstuvwxyz",
			wantErr: true,
		},
		{
			name:         "Bad case: human readable size",
			testFileName: testPrefix + "bad-size.json",
			wantErr:      true,
		},
		{
			name:         "Good case: nvme disk with numeric sizes",
			testFileName: testPrefix + "good-nvme.json",
			wantDevices: &types.BlockDevices{BlockDevices: []types.BlockDevice{
				{
					Name: "nvme0n1", Path: "/dev/nvme0n1", Size: 512110190592, Type: "disk",
					Children: []types.BlockDevice{
						{Name: "nvme0n1p1", Path: "/dev/nvme0n1p1", Size: 536870912, Type: "part"},
						{Name: "nvme0n1p2", Path: "/dev/nvme0n1p2", Size: 511571238400, Type: "part"},
					},
				},
			}},
		},
		{
			name:         "Good case: older lsblk with string sizes and no path column",
			testFileName: testPrefix + "good-legacy.json",
			wantDevices: &types.BlockDevices{BlockDevices: []types.BlockDevice{
				{
					Name: "sda", Size: 21474836480, Type: "disk",
					Children: []types.BlockDevice{
						{Name: "sda1", Size: 536870912, Type: "part"},
						{Name: "sda2", Size: 20936900608, Type: "part"},
					},
				},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			if tt.testFileName != "" {
				data, err := testDataFS.ReadFile(tt.testFileName)
				require.NoError(t, err, "should be able to read test data")
				raw = string(data)
			}

			d := &CommandDecoder{}
			got, err := d.DecodeBlockDevices(strings.NewReader(raw))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantDevices, got)
		})
	}
}

func TestCommandDecoder_DecodeProbe(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      *types.ProbeResult
		wantParts bool
	}{
		{
			name: "Good case: empty output",
			raw:  "",
			want: &types.ProbeResult{},
		},
		{
			name:      "Good case: gpt with two partitions",
			raw:       "/dev/sda: gpt partitions 1 2\n",
			want:      &types.ProbeResult{Table: "gpt", Partitions: []int{1, 2}},
			wantParts: true,
		},
		{
			name:      "Good case: msdos with extended partitions",
			raw:       "/dev/sdb: msdos partitions 1 2 <5 6>\n",
			want:      &types.ProbeResult{Table: "msdos", Partitions: []int{1, 2, 5, 6}},
			wantParts: true,
		},
		{
			name:      "Good case: label without partitions",
			raw:       "/dev/nvme0n1: gpt partitions\n",
			want:      &types.ProbeResult{Table: "gpt"},
			wantParts: true,
		},
		{
			name: "Good case: unrelated output",
			raw:  "Warning: something unrelated\n",
			want: &types.ProbeResult{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &CommandDecoder{}
			got, err := d.DecodeProbe(strings.NewReader(tt.raw))

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantParts, got.HasPartitions())
		})
	}
}
