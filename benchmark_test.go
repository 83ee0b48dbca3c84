package alpmdb_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/git-pkgs/alpmdb"
	_ "github.com/git-pkgs/alpmdb/all"
)

func syntheticPkgs(n int) []pkg {
	pkgs := make([]pkg, n)
	for i := range pkgs {
		pkgs[i] = pkg{fmt.Sprintf("pkg%04d", i), "1.0-1", "x86_64", "MIT"}
	}
	return pkgs
}

func syntheticStream(n int) string {
	var b strings.Builder
	for _, p := range syntheticPkgs(n) {
		b.WriteString(descFor(p))
	}
	return b.String()
}

func BenchmarkNew(b *testing.B) {
	formats := []string{"sync", "local"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = alpmdb.New(formats[i%len(formats)])
	}
}

func BenchmarkSupportedFormats(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = alpmdb.SupportedFormats()
	}
}

func BenchmarkDecode_Sync(b *testing.B) {
	input := syntheticStream(2000)
	d, _ := alpmdb.New("sync")
	noop := func(*alpmdb.Record, int, bool) error { return nil }

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.Decode(strings.NewReader(input), alpmdb.Source{}, noop)
	}
}

func BenchmarkDecode_Parallel(b *testing.B) {
	input := syntheticStream(500)
	d, _ := alpmdb.New("sync")
	noop := func(*alpmdb.Record, int, bool) error { return nil }

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = d.Decode(strings.NewReader(input), alpmdb.Source{}, noop)
		}
	})
}

func BenchmarkOpen_Gzip(b *testing.B) {
	path := writeDB(b, b.TempDir(), "extra", syntheticPkgs(1000)...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rc, err := alpmdb.Open(path)
		if err != nil {
			b.Fatal(err)
		}
		_, _ = io.Copy(io.Discard, rc)
		_ = rc.Close()
	}
}

func BenchmarkBulkDecode(b *testing.B) {
	dir := b.TempDir()
	paths := []string{
		writeDB(b, dir, "core", syntheticPkgs(300)...),
		writeDB(b, dir, "extra", syntheticPkgs(1000)...),
		writeDB(b, dir, "multilib", syntheticPkgs(100)...),
	}
	d, _ := alpmdb.New("sync")
	collect := func(alpmdb.Source, *alpmdb.Record, int) error { return nil }
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = alpmdb.BulkDecode(ctx, d, paths, collect)
	}
}

func BenchmarkRecordPURL(b *testing.B) {
	rec := alpmdb.NewRecord(alpmdb.Source{})
	rec.Set("Name", alpmdb.Value{Kind: alpmdb.String, Str: "pacman"})
	rec.Set("Version", alpmdb.Value{Kind: alpmdb.String, Str: "6.1.0-3"})
	rec.Set("Arch", alpmdb.Value{Kind: alpmdb.String, Str: "x86_64"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = alpmdb.RecordPURL(rec, "arch")
	}
}
