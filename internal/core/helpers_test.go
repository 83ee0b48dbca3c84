package core

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
)

func TestBulkDecode(t *testing.T) {
	dbs := map[string]string{
		"/db/core.db":  sampleDB,
		"/db/extra.db": "%FILENAME%\nripgrep.pkg\n%NAME%\nripgrep\n",
	}
	open := func(path string) (io.ReadCloser, error) {
		data, ok := dbs[path]
		if !ok {
			return nil, errors.New("no such database")
		}
		return io.NopCloser(strings.NewReader(data)), nil
	}

	var names []string
	counts, err := BulkDecode(context.Background(), newTestDecoder(t), []Source{
		{Path: "/db/core.db", Repository: "core"},
		{Path: "/db/extra.db", Repository: "extra"},
	}, open, func(src Source, rec *Record, _ int) error {
		if rec.Repository != src.Repository {
			t.Errorf("record tagged %q, source %q", rec.Repository, src.Repository)
		}
		names = append(names, rec.Name())
		return nil
	})
	if err != nil {
		t.Fatalf("BulkDecode failed: %v", err)
	}

	if counts["core"] != 3 || counts["extra"] != 1 {
		t.Errorf("counts = %v", counts)
	}
	sort.Strings(names)
	if strings.Join(names, ",") != "acl,bash,ripgrep,zlib" {
		t.Errorf("names = %v", names)
	}
}

func TestBulkDecodeSkipsFilteredTerminal(t *testing.T) {
	s, _ := CompileSearch("^acl$", "Name")
	d := newTestDecoder(t, WithSearch(s))
	open := func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(sampleDB)), nil
	}

	var got []string
	_, err := BulkDecode(context.Background(), d, []Source{{Path: "core.db", Repository: "core"}}, open,
		func(_ Source, rec *Record, _ int) error {
			got = append(got, rec.Name())
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "acl" {
		t.Errorf("got %v, want [acl]", got)
	}
}

func TestBulkDecodeError(t *testing.T) {
	open := func(path string) (io.ReadCloser, error) {
		if path == "bad.db" {
			return io.NopCloser(strings.NewReader("stray\n")), nil
		}
		return io.NopCloser(strings.NewReader(sampleDB)), nil
	}

	_, err := BulkDecodeWithConcurrency(context.Background(), newTestDecoder(t), []Source{
		{Path: "good.db", Repository: "good"},
		{Path: "bad.db", Repository: "bad"},
	}, open, func(Source, *Record, int) error { return nil }, 1)
	if !errors.Is(err, ErrMalformedStream) {
		t.Errorf("err = %v, want ErrMalformedStream", err)
	}
}

func TestBulkDecodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opened := false
	open := func(string) (io.ReadCloser, error) {
		opened = true
		return io.NopCloser(strings.NewReader(sampleDB)), nil
	}
	_, err := BulkDecode(ctx, newTestDecoder(t), []Source{{Path: "core.db"}}, open, func(Source, *Record, int) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if opened {
		t.Error("database opened after cancellation")
	}
}
