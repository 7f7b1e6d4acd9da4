package diskpart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPositiveMarkers(t *testing.T) {
	c := NewClassifier()

	assert.True(t, c.Classify("DiskPart successfully cleaned the disk."))
	assert.True(t, c.Classify(sampleDiskList))
	assert.True(t, c.Classify(sampleVolumeList))
	assert.True(t, c.Classify(samplePartitionList))
}

func TestClassifyNegativeMarkers(t *testing.T) {
	c := NewClassifier()

	assert.False(t, c.Classify("Access is denied."))
	assert.False(t, c.Classify("DiskPart has encountered an error: The media is write protected."))
	assert.False(t, c.Classify("The operation failed to complete."))
	assert.False(t, c.Classify("DiskPart cannot extend the volume."))
	assert.False(t, c.Classify("The arguments specified for this command are invalid."))
	assert.False(t, c.Classify("The disk you specified was not found."))
}

func TestClassifyNegativeDominatesPositive(t *testing.T) {
	c := NewClassifier()
	out := "DiskPart successfully selected the disk.\nAccess is denied.\n"
	assert.False(t, c.Classify(out))
}

func TestClassifyEmptyOutputFails(t *testing.T) {
	c := NewClassifier()
	assert.False(t, c.Classify(""))
	assert.False(t, c.Classify("  \r\n \n"))
}

func TestClassifyMarkerFreeOutputPasses(t *testing.T) {
	c := NewClassifier()
	assert.True(t, c.Classify("Leave focus on disk 0.\n"))
}

// Substring classification over free text is a documented limitation: labels
// that happen to contain a negative marker misclassify, and this is accepted
// behavior rather than something the classifier tries to disambiguate.
func TestClassifyAdversarialLabelFalsePositive(t *testing.T) {
	c := NewClassifier()
	out := sampleDiskList + "\n  Volume 9  F  cannot-touch  NTFS  Partition  10 GB  Healthy\n"
	assert.False(t, c.Classify(out))
}

func TestExtractErrorMessage(t *testing.T) {
	out := "Microsoft DiskPart version 10.0\n\nAccess is denied.\n\nSee the System Event Log for more information."
	assert.Equal(t, "Access is denied.", ExtractErrorMessage(out))
}

func TestExtractErrorMessageExactLine(t *testing.T) {
	assert.Equal(t, "Access is denied.", ExtractErrorMessage("Access is denied."))
}

func TestExtractErrorMessageFallsBackToWholeOutput(t *testing.T) {
	assert.Equal(t, "nothing obviously wrong", ExtractErrorMessage("  nothing obviously wrong \n"))
}
