package export

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/go-cmp/cmp"

	"github.com/me/busdesk/internal/config"
	"github.com/me/busdesk/internal/logging"
	"github.com/me/busdesk/pkg/model"
)

func TestWriteCSV(t *testing.T) {
	tbl := Owners([]model.User{
		{ID: "o1", Name: "Rao, Anita", Email: "anita@fleet.in", Phone: "98765", CreatedAt: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{ID: "o2", Name: "Binu", IsBlocked: true, CreatedAt: time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC)},
	})
	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "ID,Name,Email,Phone,Status,Joined\n" +
		"o1,\"Rao, Anita\",anita@fleet.in,98765,Active,2025-03-04\n" +
		"o2,Binu,,,Inactive,2025-05-06\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSVNeutralizesFormulas(t *testing.T) {
	tbl := Table{
		Header: []string{"Name", "Phone", "Amount", "Operator"},
		Rows: [][]string{
			{"=HYPERLINK(\"http://x\")", "+919876543210", "-12.5", "-"},
			{"@SUM(A1)", "+91 98765", "1,200", "Ravi"},
			{"-cmd|' /C calc'!A0", "", "0", "\tTab"},
		},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "Name,Phone,Amount,Operator\n" +
		"\"'=HYPERLINK(\"\"http://x\"\")\",+919876543210,-12.5,-\n" +
		"'@SUM(A1),'+91 98765,\"1,200\",Ravi\n" +
		"'-cmd|' /C calc'!A0,,0,'\tTab\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestSchedulesResolveSiblings(t *testing.T) {
	sib := Siblings{
		Buses:     []model.Bus{{ID: "b1", Name: "Volvo 9600"}},
		Routes:    []model.Route{{ID: "r1", Source: "Kochi", Destination: "Munnar"}},
		Operators: []model.User{{ID: "op1", Name: "Sajan"}},
	}
	tbl := Schedules([]model.Schedule{
		{ID: "s1", BusID: "b1", RouteID: "r1", OperatorID: "op1", Price: 450, StartTime: "08:00", EndTime: "12:30", Status: "Scheduled", IsActive: true},
		{ID: "s2", BusID: "b9", RouteID: "r1", Price: 99.5, Status: "Scheduled"},
	}, sib)

	want := [][]string{
		{"s1", "Volvo 9600", "Kochi - Munnar", "Sajan", "450", "08:00", "12:30", "Scheduled", "Yes"},
		{"s2", "b9", "Kochi - Munnar", "-", "99.50", "", "", "Scheduled", "No"},
	}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestBookingsAmount(t *testing.T) {
	tbl := Bookings([]model.Booking{{UserID: "u1", Name: "Meera", SeatsBooked: []string{"A1", "A2"}, TotalAmount: 12500}})
	row := tbl.Rows[0]
	if row[0] != "u1" || row[6] != "2" || row[7] != "12,500" {
		t.Errorf("row = %v", row)
	}
}

type fakeUploader struct {
	input *s3.PutObjectInput
	body  string
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &manager.UploadOutput{Location: "s3://" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)}, nil
}

func TestPublish(t *testing.T) {
	up := &fakeUploader{}
	p := NewPublisherWithUploader(up, config.ExportConfig{Bucket: "desk", Prefix: "exports"}, logging.Discard())
	p.now = func() time.Time { return time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC) }

	key, err := p.Publish(context.Background(), "buses", Buses([]model.Bus{{ID: "b1", Name: "Volvo", Type: model.BusSleeper, AC: true, SeatsTotal: 36, Status: model.BusActive}}))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if key != "exports/buses/20250615T093000Z.csv" {
		t.Errorf("key = %q", key)
	}
	if aws.ToString(up.input.Bucket) != "desk" || aws.ToString(up.input.ContentType) != "text/csv" {
		t.Errorf("input = %+v", up.input)
	}
	if !strings.Contains(up.body, "b1,Volvo,sleeper,AC,36,Active") {
		t.Errorf("body = %q", up.body)
	}
}
