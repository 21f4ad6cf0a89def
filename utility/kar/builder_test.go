// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestAddAndWrite(t *testing.T) {
	builder := NewBuilder(Header{
		Author:      "devblok",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})

	if err := builder.Add("test", strings.NewReader("idunvovkjnreovmegihjbrqlkmfrjnb")); err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("test2", strings.NewReader("idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb")); err != nil {
		t.Fatal(err)
	}

	if len(builder.files) != 2 {
		t.Error("incorrect number of files present")
	}

	var buf bytes.Buffer
	num, err := builder.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if num != int64(buf.Len()) {
		t.Errorf("reported %d bytes written, buffer holds %d", num, buf.Len())
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("KAR\x00")) {
		t.Error("archive does not start with the magic")
	}
}

func TestAddDuplicate(t *testing.T) {
	builder := NewBuilder(Header{})
	if err := builder.Add("test", strings.NewReader("a")); err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("test", strings.NewReader("b")); err != ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if builder.Len() != 1 {
		t.Error("duplicate was stored")
	}
}

func TestAddConcurrent(t *testing.T) {
	builder := NewBuilder(Header{})
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if err := builder.Add(name, strings.NewReader(strings.Repeat(name, 512))); err != nil {
				t.Error(err)
			}
		}(name)
	}
	wg.Wait()

	if builder.Len() != len(names) {
		t.Errorf("expected %d files, got %d", len(names), builder.Len())
	}
}
