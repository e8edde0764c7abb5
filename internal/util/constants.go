package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// NASentinel marks absent or skipped values in tabular exports.
// Skipped fields are never written as blank or zero.
const NASentinel = "NA"
