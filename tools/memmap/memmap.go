package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"

	"gopherboot/kernel/bootinfo"
	"gopherboot/kernel/kfmt"

	"github.com/pkg/errors"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
)

const defaultSysfsDir = "/sys/firmware/memmap"

// sysfsTypeCodes maps the region names used by the Linux e820 code to the
// firmware type codes.
var sysfsTypeCodes = map[string]uint32{
	"System RAM":                1,
	"Reserved":                  2,
	"ACPI Tables":               3,
	"ACPI Non-volatile Storage": 4,
	"Unusable memory":           5,
}

func run(args []string, out io.Writer) error {
	flag, args := flags.New(args, "-q", "-v")
	parm, args := parms.New(args, "-sysfs", "-e820", "-i", "-o")
	if len(args) > 0 {
		return errors.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}

	var sources int
	for _, name := range []string{"-sysfs", "-e820", "-i"} {
		if parm.ByName[name] != "" {
			sources++
		}
	}
	if sources > 1 {
		return errors.New("-sysfs, -e820 and -i are mutually exclusive")
	}

	m := bootinfo.NewMemoryMap()
	switch {
	case parm.ByName["-i"] != "":
		if err := loadImage(&m, parm.ByName["-i"]); err != nil {
			return err
		}
	case parm.ByName["-e820"] != "":
		ranges, err := readE820File(parm.ByName["-e820"])
		if err != nil {
			return err
		}
		if err = build(&m, ranges); err != nil {
			return err
		}
	default:
		dir := parm.ByName["-sysfs"]
		if dir == "" {
			dir = defaultSysfsDir
		}
		ranges, err := readSysfs(dir)
		if err != nil {
			return err
		}
		if err = build(&m, ranges); err != nil {
			return err
		}
	}

	if path := parm.ByName["-o"]; path != "" {
		if err := ioutil.WriteFile(path, m.Bytes(), 0644); err != nil {
			return errors.Wrap(err, "writing handoff image")
		}
		if flag.ByName["-v"] {
			log.Print("info", "memmap: wrote", len(m.Bytes()), "bytes to", path)
		}
	}

	if !flag.ByName["-q"] {
		kfmt.SetOutputSink(out)
		m.Print()
		kfmt.SetOutputSink(nil)
	}

	return nil
}

// build converts ranges and adds them to m. Unlike the boot stage, it
// reports malformed descriptors and capacity overflows as errors.
func build(m *bootinfo.MemoryMap, ranges []bootinfo.LegacyRange) error {
	for i, r := range ranges {
		region, err := bootinfo.ConvertLegacyRange(r)
		if err != nil {
			return errors.Wrapf(err, "descriptor %d [0x%x, +0x%x) type %d", i, r.StartAddr, r.Len, r.Type)
		}

		if m.Len() == bootinfo.MaxRegions {
			return errors.Wrapf(bootinfo.ErrTooManyRegions, "descriptor %d", i)
		}

		m.AddRegion(region)
	}

	return nil
}

func loadImage(m *bootinfo.MemoryMap, path string) error {
	image, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading handoff image")
	}

	if kerr := bootinfo.Decode(m, image); kerr != nil {
		return errors.Wrap(kerr, path)
	}

	return nil
}

// readE820File reads a raw table of little-endian legacy range descriptors.
func readE820File(path string) ([]bootinfo.LegacyRange, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading e820 table")
	}

	return decodeE820(data)
}

func decodeE820(data []byte) ([]bootinfo.LegacyRange, error) {
	if len(data)%bootinfo.RegionSize != 0 {
		return nil, errors.Errorf("e820 table size %d is not a multiple of %d", len(data), bootinfo.RegionSize)
	}

	ranges := make([]bootinfo.LegacyRange, len(data)/bootinfo.RegionSize)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, ranges); err != nil {
		return nil, errors.Wrap(err, "decoding e820 table")
	}

	return ranges, nil
}

// readSysfs reads the firmware memory map exported by Linux. Each entry is
// a directory holding the files start, end (inclusive) and type.
func readSysfs(dir string) ([]bootinfo.LegacyRange, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading firmware memory map")
	}

	var ranges []bootinfo.LegacyRange
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		r, err := readSysfsEntry(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}

	return ranges, nil
}

func readSysfsEntry(dir string) (bootinfo.LegacyRange, error) {
	var r bootinfo.LegacyRange

	start, err := readSysfsUint(filepath.Join(dir, "start"))
	if err != nil {
		return r, err
	}

	end, err := readSysfsUint(filepath.Join(dir, "end"))
	if err != nil {
		return r, err
	}

	if end < start {
		return r, errors.Errorf("%s: end 0x%x before start 0x%x", dir, end, start)
	}

	typeName, err := ioutil.ReadFile(filepath.Join(dir, "type"))
	if err != nil {
		return r, errors.Wrap(err, dir)
	}

	r.StartAddr = start
	r.Len = end - start + 1

	// unknown names keep code 0 and are rejected by the adapter
	r.Type = sysfsTypeCodes[strings.TrimSpace(string(typeName))]
	return r, nil
}

func readSysfsUint(path string) (uint64, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, path)
	}

	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 0, 64)
	if err != nil {
		return 0, errors.Wrap(err, path)
	}

	return v, nil
}
