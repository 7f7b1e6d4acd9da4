package diskpart

// DiskStatus is the online state of a disk as reported by the tool.
type DiskStatus string

const (
	DiskOnline  DiskStatus = "online"
	DiskOffline DiskStatus = "offline"
	DiskNoMedia DiskStatus = "no_media"
)

// PartitionStyle is the partition table layout of a disk.
type PartitionStyle string

const (
	StyleMBR PartitionStyle = "mbr"
	StyleGPT PartitionStyle = "gpt"
)

// PartitionType classifies a partition within its disk.
type PartitionType string

const (
	PartitionPrimary  PartitionType = "primary"
	PartitionExtended PartitionType = "extended"
	PartitionLogical  PartitionType = "logical"
)

// VolumeType classifies an OS-level volume.
type VolumeType string

const (
	VolumePartition VolumeType = "partition"
	VolumeRemovable VolumeType = "removable"
	VolumeCDROM     VolumeType = "cdrom"
)

// VolumeHealth is the health state of a volume.
type VolumeHealth string

const (
	VolumeHealthy VolumeHealth = "healthy"
	VolumeFailed  VolumeHealth = "failed"
)

// Disk is a snapshot of one physical disk from a single enumeration.
// IDs are reassigned by the OS on every rescan and must never be persisted
// across process restarts as stable keys.
type Disk struct {
	ID         int            `json:"id"`
	Status     DiskStatus     `json:"status"`
	Size       uint64         `json:"size"`
	Free       uint64         `json:"free"`
	Dynamic    bool           `json:"dynamic"`
	Style      PartitionStyle `json:"partition_style"`
	System     bool           `json:"system"`
	Boot       bool           `json:"boot"`
	Partitions []Partition    `json:"partitions,omitempty"`
}

// Partition is a snapshot of one partition. The ID is 1-based and unique
// only within its owning disk, and only as of the enumeration that produced it.
type Partition struct {
	ID         int           `json:"id"`
	Type       PartitionType `json:"type"`
	Size       uint64        `json:"size"`
	Offset     uint64        `json:"offset"`
	Status     string        `json:"status,omitempty"`
	FileSystem string        `json:"filesystem,omitempty"`
	Label      string        `json:"label,omitempty"`
	Letter     string        `json:"letter,omitempty"`
}

// Volume is a snapshot of one mountable volume. FileSystem is the tool's
// free text; only well-known values anchor the parse, nothing is rejected.
type Volume struct {
	ID         int          `json:"id"`
	Letter     string       `json:"letter,omitempty"`
	Label      string       `json:"label,omitempty"`
	FileSystem string       `json:"filesystem"`
	Type       VolumeType   `json:"type"`
	Size       uint64       `json:"size"`
	Health     VolumeHealth `json:"health"`
	Info       string       `json:"info,omitempty"`
}

// DiskDetail carries the lazily populated flags of a detail query plus the
// volume table the detail output embeds.
type DiskDetail struct {
	System  bool     `json:"system"`
	Boot    bool     `json:"boot"`
	Dynamic bool     `json:"dynamic"`
	Volumes []Volume `json:"volumes,omitempty"`
}

// CommandResult is the single envelope every operation returns. Failure is
// always encoded in the value; no error crosses the package boundary uncaught.
type CommandResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	Details   string `json:"details,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func successResult(message, details string) *CommandResult {
	return &CommandResult{Success: true, Message: message, Details: details}
}

func failureResult(err *Error) *CommandResult {
	return &CommandResult{
		Success:   false,
		Message:   err.Message,
		ErrorCode: err.Code,
		Details:   err.Details,
	}
}
