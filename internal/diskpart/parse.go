package diskpart

import (
	"regexp"
	"strconv"
	"strings"
)

// Header markers anchoring each table in the tool's output. The tables
// themselves are display-oriented fixed-width text; the marker line is the
// only part of the format treated as load-bearing.
const (
	diskHeaderMarker      = "Disk ###"
	volumeHeaderMarker    = "Volume ###"
	partitionHeaderMarker = "Partition ###"
)

var diskRowPattern = regexp.MustCompile(`^\s*Disk\s+(\d+)\s+(.+?)\s+(\d+\s*[A-Za-z]+)\s+(\d+\s*[A-Za-z]+)(.*)$`)

// File system names that anchor volume row tokenization. The label column may
// contain spaces, so the first token from this set fixes the column split.
var volumeFileSystems = map[string]struct{}{
	"NTFS":  {},
	"FAT32": {},
	"FAT":   {},
	"EXFAT": {},
	"RAW":   {},
}

// ParseSize converts the tool's "<magnitude> <unit>" size strings to bytes,
// base 1024. Size strings are advisory display data, so an unrecognized unit
// yields zero rather than an error.
func ParseSize(s string) uint64 {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0
	}
	magnitude, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	unit := strings.ToUpper(fields[1])
	var exp uint
	switch {
	case unit == "B":
		exp = 0
	case unit == "KB":
		exp = 1
	case unit == "MB":
		exp = 2
	case unit == "GB":
		exp = 3
	case unit == "TB":
		exp = 4
	default:
		return 0
	}
	return magnitude << (10 * exp)
}

// ParseDiskList extracts disk records from the raw output of a disk
// enumeration. Malformed rows are skipped; a missing header marker fails the
// whole parse because it means the output is not the expected table at all.
func ParseDiskList(raw string) ([]Disk, error) {
	header, rows, err := tableRows(raw, diskHeaderMarker)
	if err != nil {
		return nil, err
	}

	dynIdx := strings.Index(header, "Dyn")
	gptIdx := strings.Index(header, "Gpt")

	disks := make([]Disk, 0, len(rows))
	for _, line := range rows {
		m := diskRowPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		disk := Disk{
			ID:     id,
			Status: normalizeDiskStatus(m[2]),
			Size:   ParseSize(m[3]),
			Free:   ParseSize(m[4]),
			Style:  StyleMBR,
		}

		// The Dyn and Gpt marker columns are rendered as bare asterisks
		// aligned under their headers, so each marker is attributed to the
		// column it falls in. A dynamic MBR disk carries a star in the Dyn
		// column only. Rows whose markers do not line up with the header
		// (collapsed whitespace, localized headers) fall back to counting:
		// a lone marker reads as GPT, two as dynamic and GPT, with the
		// detail query as the authoritative source for the dynamic flag.
		resolved := false
		for i := 0; i < len(line); i++ {
			if line[i] != '*' {
				continue
			}
			switch {
			case inColumn(i, dynIdx):
				disk.Dynamic = true
				resolved = true
			case inColumn(i, gptIdx):
				disk.Style = StyleGPT
				resolved = true
			}
		}
		if !resolved {
			switch strings.Count(m[5], "*") {
			case 1:
				disk.Style = StyleGPT
			case 2:
				disk.Dynamic = true
				disk.Style = StyleGPT
			}
		}

		disks = append(disks, disk)
	}
	return disks, nil
}

// inColumn reports whether a marker offset falls under a three-character
// header token starting at col.
func inColumn(offset, col int) bool {
	return col >= 0 && offset >= col && offset < col+3
}

// ParseVolumeList extracts volume records from the raw output of a volume
// enumeration. Rows are tokenized on whitespace and re-anchored on the file
// system column, which lets labels carry embedded spaces.
func ParseVolumeList(raw string) ([]Volume, error) {
	_, rows, err := tableRows(raw, volumeHeaderMarker)
	if err != nil {
		return nil, err
	}

	volumes := make([]Volume, 0, len(rows))
	for _, line := range rows {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != "Volume" {
			continue
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		fsIdx := -1
		for i := 2; i < len(fields); i++ {
			if _, ok := volumeFileSystems[strings.ToUpper(fields[i])]; ok {
				fsIdx = i
				break
			}
		}
		if fsIdx < 0 {
			continue
		}

		vol := Volume{ID: id, FileSystem: fields[fsIdx], Health: VolumeFailed}

		labelStart := 2
		if fsIdx > 2 && len(fields[2]) == 1 && isASCIILetter(fields[2][0]) {
			vol.Letter = strings.ToUpper(fields[2])
			labelStart = 3
		}
		vol.Label = strings.Join(fields[labelStart:fsIdx], " ")

		rest := fields[fsIdx+1:]
		if len(rest) > 0 {
			vol.Type = normalizeVolumeType(rest[0])
		}
		if len(rest) > 2 {
			vol.Size = ParseSize(rest[1] + " " + rest[2])
		}
		if len(rest) > 3 {
			vol.Health = normalizeVolumeHealth(rest[3])
		}
		if len(rest) > 4 {
			vol.Info = strings.Join(rest[4:], " ")
		}

		volumes = append(volumes, vol)
	}
	return volumes, nil
}

// ParsePartitionList extracts partition records for the selected disk.
func ParsePartitionList(raw string) ([]Partition, error) {
	_, rows, err := tableRows(raw, partitionHeaderMarker)
	if err != nil {
		return nil, err
	}

	partitions := make([]Partition, 0, len(rows))
	for _, line := range rows {
		fields := strings.Fields(line)
		if len(fields) < 7 || fields[0] != "Partition" {
			continue
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		partitions = append(partitions, Partition{
			ID:     id,
			Type:   normalizePartitionType(fields[2]),
			Size:   ParseSize(fields[3] + " " + fields[4]),
			Offset: ParseSize(fields[5] + " " + fields[6]),
		})
	}
	return partitions, nil
}

// ParseDiskDetail extracts the lazily populated disk flags from a detail
// query, plus the volume table the detail output embeds. A disk is flagged as
// a system disk when any embedded volume advertises system or boot duty.
func ParseDiskDetail(raw string) (*DiskDetail, error) {
	detail := &DiskDetail{}

	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.Contains(line, "Boot Disk") && strings.Contains(line, "Yes"):
			detail.Boot = true
		case strings.Contains(line, "Pagefile Disk") && strings.Contains(line, "Yes"):
			detail.System = true
		case strings.Contains(line, "Type") && strings.Contains(line, "Dynamic"):
			detail.Dynamic = true
		}
	}

	if idx := strings.Index(raw, volumeHeaderMarker); idx >= 0 {
		volumes, err := ParseVolumeList(raw[idx:])
		if err == nil {
			detail.Volumes = volumes
			for _, vol := range volumes {
				info := strings.ToLower(vol.Info)
				if strings.Contains(info, "system") || strings.Contains(info, "boot") {
					detail.System = true
				}
			}
		}
	}

	return detail, nil
}

// tableRows locates the header marker, skips the header and its separator
// line, and returns the header plus the remaining lines.
func tableRows(raw, marker string) (string, []string, error) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	headerIdx := -1
	for i, line := range lines {
		if strings.Contains(line, marker) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return "", nil, ErrParse.
			WithMessagef("output does not contain the %q table header", marker).
			WithDetails(raw)
	}
	start := headerIdx + 2 // header plus separator line
	if start > len(lines) {
		return lines[headerIdx], nil, nil
	}
	return lines[headerIdx], lines[start:], nil
}

func normalizeDiskStatus(s string) DiskStatus {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "online"):
		return DiskOnline
	case strings.Contains(lower, "no media"):
		return DiskNoMedia
	default:
		// Fail toward the more restrictive classification.
		return DiskOffline
	}
}

func normalizePartitionType(s string) PartitionType {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "extended"):
		return PartitionExtended
	case strings.Contains(lower, "logical"):
		return PartitionLogical
	default:
		return PartitionPrimary
	}
}

func normalizeVolumeType(s string) VolumeType {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "removable"):
		return VolumeRemovable
	case strings.Contains(lower, "cd"), strings.Contains(lower, "dvd"):
		return VolumeCDROM
	default:
		return VolumePartition
	}
}

func normalizeVolumeHealth(s string) VolumeHealth {
	if strings.Contains(strings.ToLower(s), "healthy") {
		return VolumeHealthy
	}
	return VolumeFailed
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
