package types

import "fmt"

// FileFormat identifies the on-disk format of a Hive data file.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatParquet
	FormatORC
	FormatHudiCOW
)

// Hadoop input-format class names recognized by the connector.
const (
	InputFormatHudiCOW = "org.apache.hudi.hadoop.HoodieParquetInputFormat"
	InputFormatParquet = "org.apache.hadoop.hive.ql.io.parquet.MapredParquetInputFormat"
	InputFormatORC     = "org.apache.hadoop.hive.ql.io.orc.OrcInputFormat"
)

// String returns the format tag name.
func (f FileFormat) String() string {
	switch f {
	case FormatParquet:
		return "PARQUET"
	case FormatORC:
		return "ORC"
	case FormatHudiCOW:
		return "HUDI_COW"
	default:
		return "UNKNOWN"
	}
}

// ParseInputFormat maps a Hadoop input-format class name to a FileFormat.
// The mapping is exact: any unrecognized class name is an error, surfaced
// at planning time before any listing happens.
func ParseInputFormat(inputFormat string) (FileFormat, error) {
	switch inputFormat {
	case InputFormatHudiCOW:
		return FormatHudiCOW, nil
	case InputFormatParquet:
		return FormatParquet, nil
	case InputFormatORC:
		return FormatORC, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown hive input format %q", inputFormat)
	}
}
