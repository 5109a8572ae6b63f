package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/nohros/nohrosruby/protocol"
	"github.com/nohros/nohrosruby/registry"
	"github.com/nohros/nohrosruby/routing"
)

// ContentType is the media type of an Arrow IPC stream.
const ContentType = "application/vnd.apache.arrow.stream"

// Row is one decoded snapshot entry.
type Row struct {
	ID         int64
	Name       string
	Runtime    string
	WorkingDir string
	Arguments  string
	Facts      protocol.FactSet
	Address    string
	LastSeen   time.Time
}

// Exporter builds services snapshots.
type Exporter struct {
	allocator memory.Allocator
}

// NewExporter creates a new Exporter.
func NewExporter() *Exporter {
	return &Exporter{
		allocator: memory.DefaultAllocator,
	}
}

// BuildRecord joins services with routes into one record. The caller must
// release the record.
func (e *Exporter) BuildRecord(services []*registry.ServiceMetadata, routes []routing.Route) arrow.Record {
	byID := make(map[int64]routing.Route, len(routes))
	for _, r := range routes {
		byID[r.ServiceID] = r
	}

	builder := array.NewRecordBuilder(e.allocator, ServicesSchema())
	defer builder.Release()

	idBuilder := builder.Field(0).(*array.Int64Builder)
	nameBuilder := builder.Field(1).(*array.StringBuilder)
	runtimeBuilder := builder.Field(2).(*array.StringBuilder)
	dirBuilder := builder.Field(3).(*array.StringBuilder)
	argsBuilder := builder.Field(4).(*array.StringBuilder)
	factsBuilder := builder.Field(5).(*array.MapBuilder)
	addrBuilder := builder.Field(6).(*array.StringBuilder)
	seenBuilder := builder.Field(7).(*array.TimestampBuilder)

	keyBuilder := factsBuilder.KeyBuilder().(*array.StringBuilder)
	valueBuilder := factsBuilder.ItemBuilder().(*array.StringBuilder)

	for _, s := range services {
		idBuilder.Append(s.ID())
		nameBuilder.Append(s.Name())
		runtimeBuilder.Append(s.Runtime().String())
		appendOptional(dirBuilder, s.WorkingDir())
		appendOptional(argsBuilder, s.Arguments())

		factsBuilder.Append(true)
		for _, f := range s.Facts() {
			keyBuilder.Append(f.Key)
			valueBuilder.Append(f.Value)
		}

		if r, ok := byID[s.ID()]; ok {
			addrBuilder.Append(r.Address)
			seenBuilder.Append(arrow.Timestamp(r.LastSeen.UnixMilli()))
		} else {
			addrBuilder.AppendNull()
			seenBuilder.AppendNull()
		}
	}

	return builder.NewRecord()
}

func appendOptional(b *array.StringBuilder, s string) {
	if s == "" {
		b.AppendNull()
		return
	}
	b.Append(s)
}

// WriteServices writes a snapshot as an Arrow IPC stream.
func (e *Exporter) WriteServices(w io.Writer, services []*registry.ServiceMetadata, routes []routing.Route) error {
	record := e.BuildRecord(services, routes)
	defer record.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(record.Schema()), ipc.WithAllocator(e.allocator))
	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

// SerializeServices returns a snapshot as IPC bytes.
func (e *Exporter) SerializeServices(services []*registry.ServiceMetadata, routes []routing.Route) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.WriteServices(&buf, services, routes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadServices decodes every row of an IPC stream written by WriteServices.
func ReadServices(r io.Reader) ([]Row, error) {
	reader, err := ipc.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer reader.Release()

	var rows []Row
	for reader.Next() {
		record := reader.Record()
		if err := ValidateSchema(record); err != nil {
			return nil, err
		}
		rows = append(rows, decodeRecord(record)...)
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func decodeRecord(record arrow.Record) []Row {
	ids := record.Column(0).(*array.Int64)
	names := record.Column(1).(*array.String)
	runtimes := record.Column(2).(*array.String)
	dirs := record.Column(3).(*array.String)
	args := record.Column(4).(*array.String)
	facts := record.Column(5).(*array.Map)
	addrs := record.Column(6).(*array.String)
	seen := record.Column(7).(*array.Timestamp)

	keys := facts.Keys().(*array.String)
	values := facts.Items().(*array.String)
	offsets := facts.Offsets()

	rows := make([]Row, int(record.NumRows()))
	for i := range rows {
		row := Row{
			ID:      ids.Value(i),
			Name:    names.Value(i),
			Runtime: runtimes.Value(i),
		}
		if !dirs.IsNull(i) {
			row.WorkingDir = dirs.Value(i)
		}
		if !args.IsNull(i) {
			row.Arguments = args.Value(i)
		}
		for j := offsets[i]; j < offsets[i+1]; j++ {
			row.Facts = append(row.Facts, protocol.Fact{Key: keys.Value(int(j)), Value: values.Value(int(j))})
		}
		if !addrs.IsNull(i) {
			row.Address = addrs.Value(i)
			row.LastSeen = time.UnixMilli(int64(seen.Value(i)))
		}
		rows[i] = row
	}
	return rows
}
