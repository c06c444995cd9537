package wal

import (
	"encoding/json"
	"fmt"

	"github.com/open-edge-platform/repodb/internal/errs"
	"github.com/open-edge-platform/repodb/internal/pkgrecord"
)

// Op names the three mutating operations the log vocabulary supports.
type Op string

const (
	OpAdd    Op = "add-package"
	OpUpdate Op = "update-package"
	OpRemove Op = "remove-package"
)

// addUpdateArgs mirrors a Package's wire shape. Field order here is the
// order encoding/json emits on Marshal, matching the normative schema in
// spec §6 (name, version, depends, external, arch).
type addUpdateArgs struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Depends  []string `json:"depends"`
	External bool     `json:"external"`
	Arch     string   `json:"arch"`
}

type removeArgs struct {
	Name string `json:"name"`
}

// record is the on-disk shape of one WAL line: {"op": ..., "args": ...}.
type record struct {
	Op   Op              `json:"op"`
	Args json.RawMessage `json:"args"`
}

func encodeAddUpdate(op Op, p pkgrecord.Package) ([]byte, error) {
	args := addUpdateArgs{
		Name:     p.Name,
		Version:  p.Version,
		Depends:  p.Depends,
		External: p.External,
		Arch:     p.Arch,
	}
	if args.Depends == nil {
		args.Depends = []string{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return json.Marshal(record{Op: op, Args: argsJSON})
}

func encodeRemove(name string) ([]byte, error) {
	argsJSON, err := json.Marshal(removeArgs{Name: name})
	if err != nil {
		return nil, err
	}
	return json.Marshal(record{Op: OpRemove, Args: argsJSON})
}

// decodeLine parses one JSON line into an op and a Package (or, for
// remove, a Package with only Name populated). Unknown fields in args
// are ignored; a missing required field is fatal (errs.ErrWalCorrupt).
func decodeLine(line []byte) (Op, pkgrecord.Package, error) {
	var r record
	if err := json.Unmarshal(line, &r); err != nil {
		return "", pkgrecord.Package{}, fmt.Errorf("%w: invalid JSON record: %v", errs.ErrWalCorrupt, err)
	}

	switch r.Op {
	case OpAdd, OpUpdate:
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(r.Args, &raw); err != nil {
			return "", pkgrecord.Package{}, fmt.Errorf("%w: invalid args: %v", errs.ErrWalCorrupt, err)
		}
		var args addUpdateArgs
		if err := json.Unmarshal(r.Args, &args); err != nil {
			return "", pkgrecord.Package{}, fmt.Errorf("%w: invalid add/update args: %v", errs.ErrWalCorrupt, err)
		}
		if _, ok := raw["name"]; !ok || args.Name == "" {
			return "", pkgrecord.Package{}, fmt.Errorf("%w: record missing name", errs.ErrWalCorrupt)
		}
		if _, ok := raw["version"]; !ok || args.Version == "" {
			return "", pkgrecord.Package{}, fmt.Errorf("%w: record missing version", errs.ErrWalCorrupt)
		}
		pkg := pkgrecord.Package{
			Name:     args.Name,
			Version:  args.Version,
			Depends:  args.Depends,
			External: args.External,
			Arch:     args.Arch,
		}.WithDefaults()
		return r.Op, pkg, nil
	case OpRemove:
		var args removeArgs
		if err := json.Unmarshal(r.Args, &args); err != nil {
			return "", pkgrecord.Package{}, fmt.Errorf("%w: invalid remove args: %v", errs.ErrWalCorrupt, err)
		}
		if args.Name == "" {
			return "", pkgrecord.Package{}, fmt.Errorf("%w: remove record missing name", errs.ErrWalCorrupt)
		}
		return r.Op, pkgrecord.Package{Name: args.Name}, nil
	default:
		return "", pkgrecord.Package{}, fmt.Errorf("%w: unknown op %q", errs.ErrWalCorrupt, r.Op)
	}
}
