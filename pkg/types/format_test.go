package types

import "testing"

func TestParseInputFormat(t *testing.T) {
	tests := []struct {
		class string
		want  FileFormat
	}{
		{InputFormatParquet, FormatParquet},
		{InputFormatORC, FormatORC},
		{InputFormatHudiCOW, FormatHudiCOW},
	}
	for _, tt := range tests {
		got, err := ParseInputFormat(tt.class)
		if err != nil {
			t.Errorf("ParseInputFormat(%q): %v", tt.class, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseInputFormat(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestParseInputFormatUnknown(t *testing.T) {
	for _, class := range []string{
		"",
		"org.apache.hadoop.mapred.TextInputFormat",
		"org.apache.hudi.hadoop.realtime.HoodieParquetRealtimeInputFormat",
	} {
		if _, err := ParseInputFormat(class); err == nil {
			t.Errorf("ParseInputFormat(%q) accepted", class)
		}
	}
}

func TestFileFormatString(t *testing.T) {
	tests := []struct {
		format FileFormat
		want   string
	}{
		{FormatParquet, "PARQUET"},
		{FormatORC, "ORC"},
		{FormatHudiCOW, "HUDI_COW"},
		{FormatUnknown, "UNKNOWN"},
		{FileFormat(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", int(tt.format), got, tt.want)
		}
	}
}
