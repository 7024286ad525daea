// Package main provides a command-line utility to inspect GameMaker
// data.win containers. It prints a YAML summary of the chunk table and
// asset counts, and can disassemble individual code entries.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/scigolib/gmdata"
)

type chunkSummary struct {
	Tag    string `json:"tag"`
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
	Parsed bool   `json:"parsed"`
}

type codeSummary struct {
	Name   string `json:"name"`
	Offset uint32 `json:"offset"`
	Length uint32 `json:"length"`
	Args   uint16 `json:"args,omitempty"`
	Locals uint16 `json:"locals,omitempty"`
}

type fileSummary struct {
	BaseOffset      int64          `json:"baseOffset"`
	DeclaredSize    uint32         `json:"declaredSize"`
	BytecodeVersion uint8          `json:"bytecodeVersion"`
	IDEVersionMajor uint32         `json:"ideVersionMajor"`
	Chunks          []chunkSummary `json:"chunks"`
	Strings         int            `json:"strings,omitempty"`
	CodeEntries     []codeSummary  `json:"codeEntries,omitempty"`
	Objects         int            `json:"objects,omitempty"`
	Rooms           int            `json:"rooms,omitempty"`
	Sprites         int            `json:"sprites,omitempty"`
	Sounds          int            `json:"sounds,omitempty"`
	Errors          []string       `json:"errors,omitempty"`
}

func main() {
	strict := flag.Bool("strict", false, "Fail on the first malformed chunk instead of collecting errors")
	disasm := flag.String("disasm", "", "Disassemble the code entry with this name")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: gmdump [flags] <data.win>")
		fmt.Println("Flags:")
		flag.PrintDefaults()
		return
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}
	f, err := gmdata.ParseWithOptions(data, gmdata.Options{Strict: *strict})
	if err != nil {
		log.Fatalf("Failed to parse container: %v", err)
	}

	if *disasm != "" {
		if err := disassemble(f, *disasm); err != nil {
			log.Fatalf("Disassembly failed: %v", err)
		}
		return
	}

	out, err := yaml.Marshal(summarise(f))
	if err != nil {
		log.Fatalf("Failed to marshal summary: %v", err)
	}
	fmt.Print(string(out))
}

func summarise(f *gmdata.File) fileSummary {
	s := fileSummary{
		BaseOffset:      f.BaseOffset(),
		DeclaredSize:    f.DeclaredSize,
		BytecodeVersion: f.BytecodeVersion,
		IDEVersionMajor: f.IDEVersionMajor,
	}
	for _, ch := range f.Chunks {
		s.Chunks = append(s.Chunks, chunkSummary{
			Tag:    ch.Tag,
			Offset: ch.Start,
			Size:   ch.Size,
			Parsed: ch.Body != nil,
		})
	}
	if strings := f.Strings(); strings != nil {
		s.Strings = len(strings.Entries)
	}
	if code := f.Code(); code != nil {
		for _, entry := range code.Entries {
			name, err := f.ResolveString(entry.Name)
			if err != nil {
				name = fmt.Sprintf("<bad name ref 0x%x>", uint32(entry.Name))
			}
			cs := codeSummary{Name: name, Offset: entry.BytecodeOffset, Length: entry.BytecodeLength}
			if entry.V15 != nil {
				cs.Args = entry.V15.ArgsCount
				cs.Locals = entry.V15.LocalsCount
			}
			s.CodeEntries = append(s.CodeEntries, cs)
		}
	}
	if objects := f.Objects(); objects != nil {
		s.Objects = len(objects.Objects)
	}
	if rooms := f.Rooms(); rooms != nil {
		s.Rooms = len(rooms.Rooms)
	}
	if sprites := f.Sprites(); sprites != nil {
		s.Sprites = len(sprites.Sprites)
	}
	if sounds := f.Sounds(); sounds != nil {
		s.Sounds = len(sounds.Sounds)
	}
	for _, ce := range f.ChunkErrors {
		s.Errors = append(s.Errors, fmt.Sprintf("%s: %v", ce.Tag, ce.Err))
	}
	return s
}

func disassemble(f *gmdata.File, name string) error {
	code := f.Code()
	if code == nil {
		return fmt.Errorf("no CODE chunk in file")
	}
	for _, entry := range code.Entries {
		entryName, err := f.ResolveString(entry.Name)
		if err != nil || entryName != name {
			continue
		}
		dec, err := f.DecodeCode(entry)
		if err != nil {
			return err
		}
		fmt.Printf("%s (offset 0x%x, %d bytes):\n", name, entry.BytecodeOffset, entry.BytecodeLength)
		for {
			in, err := dec.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("  %06x  %08x  %s\n", in.Offset, in.Word, in.Op)
		}
	}
	return fmt.Errorf("code entry %q not found", name)
}
