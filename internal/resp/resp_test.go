package resp

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestReadCommand(t *testing.T) {
	in := "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n"
	r := bufio.NewReader(strings.NewReader(in))

	args, err := ReadCommand(r)
	if err != nil {
		t.Fatalf("ReadCommand: %v", err)
	}
	want := []string{"SET", "k", "v"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestReadCommandEmptyBulkString(t *testing.T) {
	in := "*2\r\n$3\r\nGET\r\n$0\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(in))

	args, err := ReadCommand(r)
	if err != nil {
		t.Fatalf("ReadCommand: %v", err)
	}
	if len(args) != 2 || args[1] != "" {
		t.Fatalf("args = %v, want [GET \"\"]", args)
	}
}

func TestReadCommandRejectsBadHeader(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("not an array\r\n"))
	if _, err := ReadCommand(r); err == nil {
		t.Fatalf("expected error for malformed header")
	}
}

func TestWriteOK(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOK(&buf); err != nil {
		t.Fatalf("WriteOK: %v", err)
	}
	if buf.String() != "+OK\r\n" {
		t.Fatalf("WriteOK wrote %q, want %q", buf.String(), "+OK\r\n")
	}
}

func TestWriteBulkStringValue(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBulkString(&buf, []byte("hi")); err != nil {
		t.Fatalf("WriteBulkString: %v", err)
	}
	if buf.String() != "$2\r\nhi\r\n" {
		t.Fatalf("WriteBulkString wrote %q, want %q", buf.String(), "$2\r\nhi\r\n")
	}
}

func TestWriteBulkStringNil(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBulkString(&buf, nil); err != nil {
		t.Fatalf("WriteBulkString: %v", err)
	}
	if buf.String() != "$-1\r\n" {
		t.Fatalf("WriteBulkString(nil) wrote %q, want %q", buf.String(), "$-1\r\n")
	}
}

func TestWriteInt(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInt(&buf, 1); err != nil {
		t.Fatalf("WriteInt: %v", err)
	}
	if buf.String() != ":1\r\n" {
		t.Fatalf("WriteInt wrote %q, want %q", buf.String(), ":1\r\n")
	}
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteError(&buf, "boom"); err != nil {
		t.Fatalf("WriteError: %v", err)
	}
	if buf.String() != "-ERR boom\r\n" {
		t.Fatalf("WriteError wrote %q, want %q", buf.String(), "-ERR boom\r\n")
	}
}
