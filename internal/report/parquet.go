package report

import (
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// ResultRecord is one fixture's outcome in the Parquet export.
type ResultRecord struct {
	RunID      string `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Fixture    string `parquet:"name=fixture, type=BYTE_ARRAY, convertedtype=UTF8"`
	Kind       string `parquet:"name=kind, type=BYTE_ARRAY, convertedtype=UTF8"`
	Outcome    string `parquet:"name=outcome, type=BYTE_ARRAY, convertedtype=UTF8"`
	Reason     string `parquet:"name=reason, type=BYTE_ARRAY, convertedtype=UTF8"`
	DurationMs int64  `parquet:"name=duration_ms, type=INT64"`
}

// Exited is the outcome recorded for fixtures that could not be judged.
const Exited = "exited"

func WriteParquet(path string, records []ResultRecord) error {
	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(ResultRecord), 1)
	if err != nil {
		return err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, record := range records {
		if err := parquetWriter.Write(record); err != nil {
			return err
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return err
	}
	return fileWriter.Close()
}

func ReadParquet(path string) ([]ResultRecord, error) {
	fileReader, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(ResultRecord), 1)
	if err != nil {
		return nil, err
	}
	defer parquetReader.ReadStop()

	records := make([]ResultRecord, int(parquetReader.GetNumRows()))
	if len(records) == 0 {
		return records, nil
	}
	if err := parquetReader.Read(&records); err != nil {
		return nil, err
	}
	return records, nil
}
