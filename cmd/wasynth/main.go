package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/wasynth/wasynth-go/instrument"
	"github.com/wasynth/wasynth-go/parse"
	"github.com/wasynth/wasynth-go/synth"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: wasynth dump <file.wasm>")
	fmt.Fprintln(os.Stderr, "       wasynth instrument <in.wasm> <out.wasm>")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "dump":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		runDump(os.Args[2])
	case "instrument":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		runInstrument(os.Args[2], os.Args[3])
	default:
		usage()
		os.Exit(1)
	}
}

func runDump(fileName string) {
	input, err := ioutil.ReadFile(fileName)
	if err != nil {
		panic(err)
	}

	m, err := parse.ParseModule(input)
	if err != nil {
		panic(err)
	}

	for _, sec := range m.Sections {
		dumpSection(m, sec)
	}
}

func dumpSection(m *parse.Module, sec parse.RawSection) {
	switch sec.ID {
	case parse.SecCustom:
		fmt.Printf("custom: name=%s, payload=%d bytes\n", sec.Name, len(sec.Payload))
	case parse.SecType:
		types, err := m.TypeSection()
		if err != nil {
			panic(err)
		}
		fmt.Println("types:")
		for _, t := range types {
			fmt.Printf("  %s\n", t)
		}
	case parse.SecImport:
		imports, err := m.Imports()
		if err != nil {
			panic(err)
		}
		fmt.Println("imports:")
		for _, im := range imports {
			fmt.Printf("  %+v\n", im)
		}
	case parse.SecFunction:
		fns, err := m.Functions()
		if err != nil {
			panic(err)
		}
		fmt.Println("function type indices:")
		for _, idx := range fns {
			fmt.Printf("  %d\n", idx)
		}
	case parse.SecTable:
		tables, err := m.Tables()
		if err != nil {
			panic(err)
		}
		fmt.Println("tables:")
		for _, tb := range tables {
			fmt.Printf("  %+v\n", tb)
		}
	case parse.SecMemory:
		mems, err := m.Memories()
		if err != nil {
			panic(err)
		}
		fmt.Println("memories:")
		for _, mem := range mems {
			fmt.Printf("  %+v\n", mem)
		}
	case parse.SecGlobal, parse.SecExport, parse.SecStart, parse.SecElement:
		// Left unprinted, matching the teacher's own dump example -- these
		// sections are uninteresting for the shape overview dump provides.
	case parse.SecCode:
		codes, err := m.Code()
		if err != nil {
			panic(err)
		}
		fmt.Println("codes:")
		for _, c := range codes {
			fmt.Printf("  locals=%d insns=%d\n", len(c.Locals), len(c.Body))
		}
	case parse.SecData:
		data, err := m.Data()
		if err != nil {
			panic(err)
		}
		fmt.Println("data:")
		for _, d := range data {
			fmt.Printf("  mode=%d bytes=%d\n", d.Mode, len(d.Bytes))
		}
	case parse.SecDataCount:
		count, ok, err := m.DataCount()
		if err != nil {
			panic(err)
		}
		if ok {
			fmt.Printf("data count: %d\n", count)
		}
	}
}

func runInstrument(inFile, outFile string) {
	input, err := ioutil.ReadFile(inFile)
	if err != nil {
		panic(err)
	}

	pm, err := parse.ParseModule(input)
	if err != nil {
		panic(err)
	}
	sm, err := synth.Lift(pm)
	if err != nil {
		panic(err)
	}
	if err := instrument.InstallAll(sm); err != nil {
		panic(err)
	}

	if err := ioutil.WriteFile(outFile, sm.Encode(), 0644); err != nil {
		panic(err)
	}
}
