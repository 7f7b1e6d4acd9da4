package diskpart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(runner Runner) *Manager {
	return NewManager(newTestExecutor(runner, true))
}

func TestManagerListDisks(t *testing.T) {
	runner := &fakeRunner{stdout: sampleDiskList}
	m := newTestManager(runner)

	res := m.ListDisks(context.Background())

	require.True(t, res.Success)
	assert.Equal(t, "list disk\n", runner.scriptBody)
	disks := res.Data.([]Disk)
	assert.Len(t, disks, 3)
}

func TestManagerListVolumes(t *testing.T) {
	runner := &fakeRunner{stdout: sampleVolumeList}
	m := newTestManager(runner)

	res := m.ListVolumes(context.Background())

	require.True(t, res.Success)
	assert.Equal(t, "list volume\n", runner.scriptBody)
	assert.Len(t, res.Data.([]Volume), 3)
}

func TestManagerListPartitionsSelectsDiskFirst(t *testing.T) {
	runner := &fakeRunner{stdout: samplePartitionList}
	m := newTestManager(runner)

	res := m.ListPartitions(context.Background(), 1)

	require.True(t, res.Success)
	assert.Equal(t, "select disk 1\nlist partition\n", runner.scriptBody)
	assert.Len(t, res.Data.([]Partition), 2)
}

func TestManagerDiskDetail(t *testing.T) {
	runner := &fakeRunner{stdout: "Boot Disk  : Yes\nPagefile Disk  : Yes\n\n  Volume ###  Ltr  Label  Fs  Type  Size  Status  Info\n  ---\n  Volume 0  C  Windows  NTFS  Partition  237 GB  Healthy  Boot\n"}
	m := newTestManager(runner)

	res := m.DiskDetail(context.Background(), 0)

	require.True(t, res.Success)
	assert.Equal(t, "select disk 0\ndetail disk\n", runner.scriptBody)
	detail := res.Data.(*DiskDetail)
	assert.True(t, detail.Boot)
	assert.True(t, detail.System)
	require.Len(t, detail.Volumes, 1)
}

func TestManagerValidationFailsBeforeSubprocess(t *testing.T) {
	runner := &fakeRunner{stdout: "should never run"}
	m := newTestManager(runner)
	ctx := context.Background()

	cases := []*CommandResult{
		m.ListPartitions(ctx, -1),
		m.CreatePartition(ctx, -2, 100),
		m.CreatePartition(ctx, 0, -100),
		m.DeletePartition(ctx, 0, 0),
		m.Format(ctx, 0, 1, "ext4", "", true),
		m.AssignLetter(ctx, 0, 1, "??"),
		m.RemoveLetter(ctx, 0, 1, ""),
		m.Extend(ctx, 0, 1, -5),
		m.Shrink(ctx, 0, 1, 100, 200),
	}

	for i, res := range cases {
		require.False(t, res.Success, "case %d", i)
		assert.Equal(t, "INVALID_COMMAND", res.ErrorCode, "case %d", i)
	}
	assert.Equal(t, 0, runner.calls, "validation failures must not spawn a subprocess")
}

func TestManagerWipeScripts(t *testing.T) {
	runner := &fakeRunner{stdout: "DiskPart succeeded in cleaning the disk."}
	m := newTestManager(runner)

	res := m.Wipe(context.Background(), 2, false)
	require.True(t, res.Success)
	assert.Equal(t, "select disk 2\nclean\n", runner.scriptBody)

	res = m.Wipe(context.Background(), 2, true)
	require.True(t, res.Success)
	assert.Equal(t, "select disk 2\nclean all\n", runner.scriptBody)
}

func TestManagerFormatScript(t *testing.T) {
	runner := &fakeRunner{stdout: "DiskPart successfully formatted the volume."}
	m := newTestManager(runner)

	res := m.Format(context.Background(), 0, 2, "ntfs", "Data", true)

	require.True(t, res.Success)
	assert.Equal(t, "select disk 0\nselect partition 2\nformat fs=NTFS label=\"Data\" quick\n", runner.scriptBody)
}

func TestManagerAssignAndRemoveLetterScripts(t *testing.T) {
	runner := &fakeRunner{stdout: "DiskPart successfully assigned the drive letter or mount point."}
	m := newTestManager(runner)

	res := m.AssignLetter(context.Background(), 0, 1, "e")
	require.True(t, res.Success)
	assert.Equal(t, "select disk 0\nselect partition 1\nassign letter=E\n", runner.scriptBody)

	res = m.RemoveLetter(context.Background(), 0, 1, "E")
	require.True(t, res.Success)
	assert.Equal(t, "select disk 0\nselect partition 1\nremove letter=E\n", runner.scriptBody)
}

func TestManagerSetActiveExtendShrinkScripts(t *testing.T) {
	runner := &fakeRunner{stdout: "DiskPart successfully completed the operation."}
	m := newTestManager(runner)
	ctx := context.Background()

	require.True(t, m.SetActive(ctx, 0, 1).Success)
	assert.Equal(t, "select disk 0\nselect partition 1\nactive\n", runner.scriptBody)

	require.True(t, m.Extend(ctx, 0, 1, 1024).Success)
	assert.Equal(t, "select disk 0\nselect partition 1\nextend size=1024\n", runner.scriptBody)

	require.True(t, m.Shrink(ctx, 0, 1, 500, 100).Success)
	assert.Equal(t, "select disk 0\nselect partition 1\nshrink desired=500 minimum=100\n", runner.scriptBody)
}

func TestManagerRefinesDiskNotFound(t *testing.T) {
	runner := &fakeRunner{stdout: "The disk you specified was not found.\n"}
	m := newTestManager(runner)

	res := m.ListPartitions(context.Background(), 9)

	require.False(t, res.Success)
	assert.Equal(t, "DISK_NOT_FOUND", res.ErrorCode)
}

func TestManagerRefinesPartitionNotFound(t *testing.T) {
	runner := &fakeRunner{stdout: "The specified partition was not found.\n"}
	m := newTestManager(runner)

	res := m.DeletePartition(context.Background(), 0, 9)

	require.False(t, res.Success)
	assert.Equal(t, "PARTITION_NOT_FOUND", res.ErrorCode)
}

func TestManagerLeavesOtherFailuresAlone(t *testing.T) {
	runner := &fakeRunner{stdout: "Access is denied.\n"}
	m := newTestManager(runner)

	res := m.Wipe(context.Background(), 0, false)

	require.False(t, res.Success)
	assert.Equal(t, "ACCESS_DENIED", res.ErrorCode)
}

func TestManagerWithoutElevation(t *testing.T) {
	runner := &fakeRunner{stdout: sampleDiskList}
	m := NewManager(newTestExecutor(runner, false))

	res := m.ListDisks(context.Background())

	require.False(t, res.Success)
	assert.Equal(t, "PRIVILEGE_ERROR", res.ErrorCode)
	assert.Equal(t, 0, runner.calls)
}
