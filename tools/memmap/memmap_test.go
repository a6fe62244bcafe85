package main

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"gopherboot/kernel/bootinfo"
)

type sysfsEntry struct {
	start, end string
	typeName   string
}

func writeSysfs(t *testing.T, entries []sysfsEntry) string {
	t.Helper()
	dir := t.TempDir()
	for i, e := range entries {
		entryDir := filepath.Join(dir, strconv.Itoa(i))
		if err := os.Mkdir(entryDir, 0755); err != nil {
			t.Fatal(err)
		}
		for name, val := range map[string]string{"start": e.start, "end": e.end, "type": e.typeName} {
			if err := ioutil.WriteFile(filepath.Join(entryDir, name), []byte(val+"\n"), 0644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return dir
}

var qemuSysfs = []sysfsEntry{
	{"0x100000", "0x7fdffff", "System RAM"},
	{"0x0", "0x9fbff", "System RAM"},
	{"0x9fc00", "0x9ffff", "Reserved"},
	{"0xf0000", "0xfffff", "Reserved"},
	{"0x7fe0000", "0x7ffffff", "Reserved"},
	{"0xfffc0000", "0xffffffff", "Reserved"},
}

func TestRunSysfs(t *testing.T) {
	dir := writeSysfs(t, qemuSysfs)

	var out bytes.Buffer
	if err := run([]string{"-sysfs", dir}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := "[bootinfo] system memory map:\n" +
		"\t[0x0000000000 - 0x00000a0000), size:     655360, type: usable\n" +
		"\t[0x000009f000 - 0x00000a0000), size:       4096, type: reserved\n" +
		"\t[0x00000f0000 - 0x0000100000), size:      65536, type: reserved\n" +
		"\t[0x0000100000 - 0x0007fe0000), size:  133038080, type: usable\n" +
		"\t[0x0007fe0000 - 0x0008000000), size:     131072, type: reserved\n" +
		"\t[0x00fffc0000 - 0x0100000000), size:     262144, type: reserved\n" +
		"[bootinfo] 6 regions, available memory: 130560Kb\n"

	if got := out.String(); got != exp {
		t.Fatalf("expected output:\n%s\ngot:\n%s", exp, got)
	}
}

func TestRunWriteAndReadImage(t *testing.T) {
	dir := writeSysfs(t, qemuSysfs)
	imagePath := filepath.Join(t.TempDir(), "memmap.bin")

	var out bytes.Buffer
	if err := run([]string{"-q", "-sysfs", dir, "-o", imagePath}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Len() != 0 {
		t.Fatalf("expected -q to suppress output; got %q", out.String())
	}

	image, err := ioutil.ReadFile(imagePath)
	if err != nil {
		t.Fatal(err)
	}

	if len(image) != bootinfo.HandoffSize {
		t.Fatalf("expected image to be %d bytes; got %d", bootinfo.HandoffSize, len(image))
	}

	if got := binary.LittleEndian.Uint64(image[bootinfo.MaxRegions*bootinfo.RegionSize:]); got != uint64(len(qemuSysfs)) {
		t.Fatalf("expected image to encode %d regions; got %d", len(qemuSysfs), got)
	}

	var fromSysfs, fromImage bytes.Buffer
	if err := run([]string{"-sysfs", dir}, &fromSysfs); err != nil {
		t.Fatal(err)
	}
	if err := run([]string{"-i", imagePath}, &fromImage); err != nil {
		t.Fatalf("unexpected error reading image: %v", err)
	}

	if fromImage.String() != fromSysfs.String() {
		t.Fatalf("expected decoded image to print:\n%s\ngot:\n%s", fromSysfs.String(), fromImage.String())
	}
}

func TestRunE820(t *testing.T) {
	table := []bootinfo.LegacyRange{
		{StartAddr: 0x2000, Len: 0x1000, Type: 1},
		{StartAddr: 0x0, Len: 0x1000, Type: 2, ExtendedAttributes: 1},
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, table); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "e820.bin")
	if err := ioutil.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run([]string{"-e820", path}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 output lines; got %d:\n%s", len(lines), out.String())
	}

	if !strings.HasSuffix(lines[1], "type: reserved") || !strings.HasSuffix(lines[2], "type: usable") {
		t.Fatalf("expected regions to be listed in address order; got:\n%s", out.String())
	}
}

func TestRunErrors(t *testing.T) {
	tooMany := make([]sysfsEntry, bootinfo.MaxRegions+1)
	for i := range tooMany {
		tooMany[i] = sysfsEntry{
			start:    "0x" + strconv.FormatUint(uint64(i)*0x1000, 16),
			end:      "0x" + strconv.FormatUint(uint64(i)*0x1000+0xfff, 16),
			typeName: "System RAM",
		}
	}

	corruptImage := filepath.Join(t.TempDir(), "corrupt.bin")
	if err := ioutil.WriteFile(corruptImage, make([]byte, bootinfo.HandoffSize-8), 0644); err != nil {
		t.Fatal(err)
	}

	badTable := filepath.Join(t.TempDir(), "bad.e820")
	if err := ioutil.WriteFile(badTable, make([]byte, bootinfo.RegionSize+1), 0644); err != nil {
		t.Fatal(err)
	}

	specs := []struct {
		name      string
		args      []string
		expErrMsg string
	}{
		{
			"unknown region type",
			[]string{"-sysfs", writeSysfs(t, []sysfsEntry{{"0x0", "0xfff", "Persistent Memory"}})},
			"invalid legacy memory region type",
		},
		{
			"too many regions",
			[]string{"-sysfs", writeSysfs(t, tooMany)},
			"too many memory regions in memory map",
		},
		{
			"conflicting sources",
			[]string{"-sysfs", "a", "-i", "b"},
			"mutually exclusive",
		},
		{
			"extra arguments",
			[]string{"-q", "foo"},
			"unexpected arguments: foo",
		},
		{
			"image size",
			[]string{"-i", corruptImage},
			"memory map handoff image has wrong size",
		},
		{
			"e820 table size",
			[]string{"-e820", badTable},
			"not a multiple of 24",
		},
		{
			"missing sysfs dir",
			[]string{"-sysfs", filepath.Join(t.TempDir(), "missing")},
			"reading firmware memory map",
		},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(spec.args, &out)
			if err == nil {
				t.Fatal("expected an error")
			}

			if !strings.Contains(err.Error(), spec.expErrMsg) {
				t.Fatalf("expected error to contain %q; got %q", spec.expErrMsg, err.Error())
			}
		})
	}
}
