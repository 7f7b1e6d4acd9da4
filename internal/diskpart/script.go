package diskpart

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Instruction is a single imperative line of a diskpart script. Instructions
// are combined by BuildScript; ordering is significant because selection
// instructions scope everything that follows them within one script run.
type Instruction string

// File systems the format instruction accepts. Accepted case-insensitively,
// rendered uppercase.
var knownFileSystems = map[string]struct{}{
	"NTFS":  {},
	"FAT32": {},
	"EXFAT": {},
	"FAT":   {},
}

const (
	labelMaxNTFS  = 32
	labelMaxOther = 11
)

// BuildListDisks renders the disk enumeration instruction.
func BuildListDisks() Instruction { return "list disk" }

// BuildListVolumes renders the volume enumeration instruction.
func BuildListVolumes() Instruction { return "list volume" }

// BuildListPartitions renders the partition enumeration instruction for the
// currently selected disk.
func BuildListPartitions() Instruction { return "list partition" }

// BuildDetailDisk renders the detail query for the currently selected disk.
func BuildDetailDisk() Instruction { return "detail disk" }

// BuildSelectDisk renders a disk selection. Disk indices are non-negative.
func BuildSelectDisk(disk int) (Instruction, error) {
	if disk < 0 {
		return "", ErrInvalidCommand.WithMessagef("disk index must be non-negative, got %d", disk)
	}
	return Instruction(fmt.Sprintf("select disk %d", disk)), nil
}

// BuildSelectPartition renders a partition selection. Partition indices are 1-based.
func BuildSelectPartition(partition int) (Instruction, error) {
	if partition < 1 {
		return "", ErrInvalidCommand.WithMessagef("partition index must be at least 1, got %d", partition)
	}
	return Instruction(fmt.Sprintf("select partition %d", partition)), nil
}

// BuildWipeQuick renders a quick wipe of the selected disk.
func BuildWipeQuick() Instruction { return "clean" }

// BuildWipeSecure renders a full zero-fill wipe of the selected disk.
func BuildWipeSecure() Instruction { return "clean all" }

// BuildCreatePartition renders a primary partition creation. sizeMB of zero
// means "use all remaining space" and omits the size clause.
func BuildCreatePartition(sizeMB int64) (Instruction, error) {
	if sizeMB < 0 {
		return "", ErrInvalidCommand.WithMessagef("partition size must be positive, got %d", sizeMB)
	}
	if sizeMB == 0 {
		return "create partition primary", nil
	}
	return Instruction(fmt.Sprintf("create partition primary size=%d", sizeMB)), nil
}

// BuildDeletePartition renders deletion of the selected partition.
func BuildDeletePartition() Instruction { return "delete partition" }

// BuildFormat renders a format of the selected partition. The file system is
// validated against the known set and normalized to uppercase; the label is
// capped at 32 characters for NTFS and 11 otherwise.
func BuildFormat(fs, label string, quick bool) (Instruction, error) {
	normalized := strings.ToUpper(strings.TrimSpace(fs))
	if _, ok := knownFileSystems[normalized]; !ok {
		return "", ErrInvalidCommand.WithMessagef("unsupported file system %q", fs)
	}

	maxLabel := labelMaxOther
	if normalized == "NTFS" {
		maxLabel = labelMaxNTFS
	}
	if utf8.RuneCountInString(label) > maxLabel {
		return "", ErrInvalidCommand.WithMessagef("label exceeds %d characters for %s", maxLabel, normalized)
	}
	if strings.ContainsAny(label, "\"\r\n") {
		return "", ErrInvalidCommand.WithMessage("label must not contain quotes or line breaks")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "format fs=%s", normalized)
	if label != "" {
		fmt.Fprintf(&b, " label=\"%s\"", label)
	}
	if quick {
		b.WriteString(" quick")
	}
	return Instruction(b.String()), nil
}

// BuildAssignLetter renders a drive letter assignment for the selected partition.
func BuildAssignLetter(letter string) (Instruction, error) {
	l, err := normalizeDriveLetter(letter)
	if err != nil {
		return "", err
	}
	return Instruction(fmt.Sprintf("assign letter=%s", l)), nil
}

// BuildRemoveLetter renders a drive letter removal for the selected partition.
func BuildRemoveLetter(letter string) (Instruction, error) {
	l, err := normalizeDriveLetter(letter)
	if err != nil {
		return "", err
	}
	return Instruction(fmt.Sprintf("remove letter=%s", l)), nil
}

// BuildSetActive renders marking the selected partition active.
func BuildSetActive() Instruction { return "active" }

// BuildExtend renders an extension of the selected partition. sizeMB of zero
// means "use all contiguous free space".
func BuildExtend(sizeMB int64) (Instruction, error) {
	if sizeMB < 0 {
		return "", ErrInvalidCommand.WithMessagef("extend size must be positive, got %d", sizeMB)
	}
	if sizeMB == 0 {
		return "extend", nil
	}
	return Instruction(fmt.Sprintf("extend size=%d", sizeMB)), nil
}

// BuildShrink renders a shrink of the selected partition. Zero desired and
// minimum let the tool reclaim the maximum; a minimum without a desired
// amount is meaningless and rejected.
func BuildShrink(desiredMB, minimumMB int64) (Instruction, error) {
	if desiredMB < 0 || minimumMB < 0 {
		return "", ErrInvalidCommand.WithMessagef("shrink sizes must be non-negative, got desired %d minimum %d", desiredMB, minimumMB)
	}
	if desiredMB == 0 {
		if minimumMB > 0 {
			return "", ErrInvalidCommand.WithMessage("shrink minimum requires a desired amount")
		}
		return "shrink", nil
	}
	if minimumMB > desiredMB {
		return "", ErrInvalidCommand.WithMessagef("minimum %d exceeds desired %d", minimumMB, desiredMB)
	}
	if minimumMB == 0 {
		return Instruction(fmt.Sprintf("shrink desired=%d", desiredMB)), nil
	}
	return Instruction(fmt.Sprintf("shrink desired=%d minimum=%d", desiredMB, minimumMB)), nil
}

// BuildScript joins an ordered instruction list into one newline-delimited
// script. Order is preserved verbatim; selection scoping is the caller's
// contract to uphold.
func BuildScript(instructions []Instruction) (string, error) {
	if len(instructions) == 0 {
		return "", ErrInvalidCommand.WithMessage("script requires at least one instruction")
	}
	var b strings.Builder
	for _, ins := range instructions {
		b.WriteString(string(ins))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func normalizeDriveLetter(letter string) (string, error) {
	if len(letter) != 1 {
		return "", ErrInvalidCommand.WithMessagef("drive letter must be a single ASCII letter, got %q", letter)
	}
	c := letter[0]
	switch {
	case c >= 'A' && c <= 'Z':
		return letter, nil
	case c >= 'a' && c <= 'z':
		return strings.ToUpper(letter), nil
	}
	return "", ErrInvalidCommand.WithMessagef("drive letter must be a single ASCII letter, got %q", letter)
}
