package diskpart

import (
	"context"
	"strings"
)

// Manager composes the script builder, executor and parsers into the
// operations callers consume. Every method returns a CommandResult; parameter
// validation failures surface before any subprocess is spawned. The manager
// holds no state and does not serialize concurrent callers: destructive
// operations against the same disk must be serialized by the caller, because
// the underlying tool is not safe for concurrent mutation of one target.
type Manager struct {
	executor *Executor
}

// NewManager creates a manager around an executor.
func NewManager(executor *Executor) *Manager {
	return &Manager{executor: executor}
}

// Available reports whether the external tool is present on the search path.
func (m *Manager) Available() bool {
	return m.executor.Available()
}

// ListDisks enumerates all disks.
func (m *Manager) ListDisks(ctx context.Context) *CommandResult {
	return m.listAndParse(ctx, BuildListDisks(), func(raw string) (any, error) {
		return ParseDiskList(raw)
	})
}

// ListVolumes enumerates all volumes.
func (m *Manager) ListVolumes(ctx context.Context) *CommandResult {
	return m.listAndParse(ctx, BuildListVolumes(), func(raw string) (any, error) {
		return ParseVolumeList(raw)
	})
}

// ListPartitions enumerates the partitions of one disk.
func (m *Manager) ListPartitions(ctx context.Context, disk int) *CommandResult {
	sel, err := BuildSelectDisk(disk)
	if err != nil {
		return resultFromError(err)
	}
	script, err := BuildScript([]Instruction{sel, BuildListPartitions()})
	if err != nil {
		return resultFromError(err)
	}
	res := m.executor.ExecuteAndParse(ctx, script, 0, func(raw string) (any, error) {
		return ParsePartitionList(raw)
	})
	return m.refine(res, disk, 0)
}

// DiskDetail queries the lazily populated flags and embedded volume table of
// one disk.
func (m *Manager) DiskDetail(ctx context.Context, disk int) *CommandResult {
	sel, err := BuildSelectDisk(disk)
	if err != nil {
		return resultFromError(err)
	}
	script, err := BuildScript([]Instruction{sel, BuildDetailDisk()})
	if err != nil {
		return resultFromError(err)
	}
	res := m.executor.ExecuteAndParse(ctx, script, 0, func(raw string) (any, error) {
		return ParseDiskDetail(raw)
	})
	return m.refine(res, disk, 0)
}

// Wipe removes all partition and volume structures from a disk. Secure wipes
// zero every sector and run under the destructive timeout like all other
// mutating operations.
func (m *Manager) Wipe(ctx context.Context, disk int, secure bool) *CommandResult {
	sel, err := BuildSelectDisk(disk)
	if err != nil {
		return resultFromError(err)
	}
	wipe := BuildWipeQuick()
	if secure {
		wipe = BuildWipeSecure()
	}
	return m.runDestructive(ctx, disk, 0, sel, wipe)
}

// CreatePartition creates a primary partition on a disk. sizeMB of zero uses
// all remaining space.
func (m *Manager) CreatePartition(ctx context.Context, disk int, sizeMB int64) *CommandResult {
	sel, err := BuildSelectDisk(disk)
	if err != nil {
		return resultFromError(err)
	}
	create, err := BuildCreatePartition(sizeMB)
	if err != nil {
		return resultFromError(err)
	}
	return m.runDestructive(ctx, disk, 0, sel, create)
}

// DeletePartition deletes one partition of a disk.
func (m *Manager) DeletePartition(ctx context.Context, disk, partition int) *CommandResult {
	instrs, err := selectTarget(disk, partition)
	if err != nil {
		return resultFromError(err)
	}
	return m.runDestructive(ctx, disk, partition, append(instrs, BuildDeletePartition())...)
}

// Format formats one partition with the given file system and label.
func (m *Manager) Format(ctx context.Context, disk, partition int, fs, label string, quick bool) *CommandResult {
	instrs, err := selectTarget(disk, partition)
	if err != nil {
		return resultFromError(err)
	}
	format, err := BuildFormat(fs, label, quick)
	if err != nil {
		return resultFromError(err)
	}
	return m.runDestructive(ctx, disk, partition, append(instrs, format)...)
}

// AssignLetter assigns a drive letter to one partition.
func (m *Manager) AssignLetter(ctx context.Context, disk, partition int, letter string) *CommandResult {
	instrs, err := selectTarget(disk, partition)
	if err != nil {
		return resultFromError(err)
	}
	assign, err := BuildAssignLetter(letter)
	if err != nil {
		return resultFromError(err)
	}
	return m.run(ctx, disk, partition, append(instrs, assign)...)
}

// RemoveLetter removes a drive letter from one partition.
func (m *Manager) RemoveLetter(ctx context.Context, disk, partition int, letter string) *CommandResult {
	instrs, err := selectTarget(disk, partition)
	if err != nil {
		return resultFromError(err)
	}
	remove, err := BuildRemoveLetter(letter)
	if err != nil {
		return resultFromError(err)
	}
	return m.run(ctx, disk, partition, append(instrs, remove)...)
}

// SetActive marks one partition active.
func (m *Manager) SetActive(ctx context.Context, disk, partition int) *CommandResult {
	instrs, err := selectTarget(disk, partition)
	if err != nil {
		return resultFromError(err)
	}
	return m.run(ctx, disk, partition, append(instrs, BuildSetActive())...)
}

// Extend grows one partition. sizeMB of zero uses all contiguous free space.
func (m *Manager) Extend(ctx context.Context, disk, partition int, sizeMB int64) *CommandResult {
	instrs, err := selectTarget(disk, partition)
	if err != nil {
		return resultFromError(err)
	}
	extend, err := BuildExtend(sizeMB)
	if err != nil {
		return resultFromError(err)
	}
	return m.runDestructive(ctx, disk, partition, append(instrs, extend)...)
}

// Shrink shrinks one partition by the desired amount, never less than the minimum.
func (m *Manager) Shrink(ctx context.Context, disk, partition int, desiredMB, minimumMB int64) *CommandResult {
	instrs, err := selectTarget(disk, partition)
	if err != nil {
		return resultFromError(err)
	}
	shrink, err := BuildShrink(desiredMB, minimumMB)
	if err != nil {
		return resultFromError(err)
	}
	return m.runDestructive(ctx, disk, partition, append(instrs, shrink)...)
}

func selectTarget(disk, partition int) ([]Instruction, error) {
	selDisk, err := BuildSelectDisk(disk)
	if err != nil {
		return nil, err
	}
	selPart, err := BuildSelectPartition(partition)
	if err != nil {
		return nil, err
	}
	return []Instruction{selDisk, selPart}, nil
}

func (m *Manager) listAndParse(ctx context.Context, instr Instruction, parse ParseFunc) *CommandResult {
	script, err := BuildScript([]Instruction{instr})
	if err != nil {
		return resultFromError(err)
	}
	return m.executor.ExecuteAndParse(ctx, script, 0, parse)
}

func (m *Manager) run(ctx context.Context, disk, partition int, instrs ...Instruction) *CommandResult {
	script, err := BuildScript(instrs)
	if err != nil {
		return resultFromError(err)
	}
	return m.refine(m.executor.Execute(ctx, script, 0), disk, partition)
}

func (m *Manager) runDestructive(ctx context.Context, disk, partition int, instrs ...Instruction) *CommandResult {
	script, err := BuildScript(instrs)
	if err != nil {
		return resultFromError(err)
	}
	return m.refine(m.executor.Execute(ctx, script, m.executor.destructiveTimeout), disk, partition)
}

// refine upgrades generic execution failures to the more specific not-found
// classes when the tool's message names the selected target.
func (m *Manager) refine(res *CommandResult, disk, partition int) *CommandResult {
	if res.Success || res.ErrorCode != ErrCommandExecution.Code {
		return res
	}
	lower := strings.ToLower(res.Message + "\n" + res.Details)
	notFound := strings.Contains(lower, "not valid") ||
		strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")
	if !notFound {
		return res
	}
	if partition >= 1 && strings.Contains(lower, "partition") {
		res.ErrorCode = ErrPartitionNotFound.Code
		return res
	}
	if strings.Contains(lower, "disk") {
		res.ErrorCode = ErrDiskNotFound.Code
	}
	return res
}

func resultFromError(err error) *CommandResult {
	if derr, ok := err.(*Error); ok {
		return failureResult(derr)
	}
	return failureResult(ErrCommandExecution.WithMessage(err.Error()))
}
