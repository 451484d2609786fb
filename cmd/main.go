package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpxro7/wwisecodec/bnk"
	"github.com/hpxro7/wwisecodec/pck"
	"github.com/hpxro7/wwisecodec/resolve"
	"github.com/hpxro7/wwisecodec/util"
	"github.com/hpxro7/wwisecodec/wwise"
)

var soundBankExtensions = []string{".nbnk", ".bnk"}
var filePackageExtensions = []string{".npck", ".pck"}

var shouldUnpack bool
var shouldReplace bool
var filePath string
var output string
var targetPath string
var cuesPath string
var language string
var updateSizes bool
var verbose bool

var log = logrus.New()

type flagError string

func init() {
	const (
		usage    = "unpack a .bnk or .pck into seperate .wem files"
		flagName = "unpack"
	)
	flag.BoolVar(&shouldUnpack, flagName, false, usage)
	flag.BoolVar(&shouldUnpack, "u", false, shorthandDesc(flagName))
}

func init() {
	const (
		usage = "replace a set of .wem files from a source .bnk or .pck file, " +
			"outputing a fully usable .bnk or .pck with wems, offsets and lengths " +
			"updated."
		flagName = "replace"
	)
	flag.BoolVar(&shouldReplace, flagName, false, usage)
	flag.BoolVar(&shouldReplace, "r", false, shorthandDesc(flagName))
}

func init() {
	const (
		usage = "the path to the source .bnk or .pck. When unpack is used, this " +
			"is the bnk or pck file to unpack. When replace is used, this .bnk or " +
			".pck is used as a source; the wem files, offsets and lengths of this " +
			".bnk or .pck will updated and written to the file specified by output."
		flagName = "filepath"
	)
	flag.StringVar(&filePath, flagName, "", usage)
	flag.StringVar(&filePath, "f", "", shorthandDesc(flagName))
}

func init() {
	const (
		usage = "When unpack is used, this is the directory to output unpacked " +
			".wem files. When replace is used, this is the path of the updated " +
			".bnk or .pck."
		flagName = "output"
	)
	flag.StringVar(&output, flagName, "", usage)
	flag.StringVar(&output, "o", "", shorthandDesc(flagName))
}

func init() {
	const (
		usage = "The directory to find .wem files in for replacing. Each wem " +
			"file's name must end in the source ID of the wem to replace, as " +
			"written by unpack, such as 1234.wem or Play_Step_1234.wem. These " +
			"wems must not be padded ahead of time; this tool will automatically " +
			"add any padding needed."
		flagName = "target"
	)
	flag.StringVar(&targetPath, flagName, "", usage)
	flag.StringVar(&targetPath, "t", "", shorthandDesc(flagName))
}

func init() {
	const (
		usage = "A CSV cue table with CueName and CueIndex columns. When given, " +
			"unpacked wems are prefixed with the name of the first cue that " +
			"plays them."
		flagName = "cues"
	)
	flag.StringVar(&cuesPath, flagName, "", usage)
	flag.StringVar(&cuesPath, "c", "", shorthandDesc(flagName))
}

func init() {
	const (
		usage = "The language whose SoundBanks are preferred when a File " +
			"Package stores a bank for several languages."
		flagName = "language"
	)
	flag.StringVar(&language, flagName, "", usage)
	flag.StringVar(&language, "l", "", shorthandDesc(flagName))
}

func init() {
	const (
		usage = "When replace is used, also update the wem sizes recorded by " +
			"sounds and music tracks."
		flagName = "update-sizes"
	)
	flag.BoolVar(&updateSizes, flagName, true, usage)
	flag.BoolVar(&updateSizes, "s", true, shorthandDesc(flagName))
}

func init() {
	const (
		usage = "Shows additional information about the strcuture of the parsed " +
			"SoundBank or File Package file."
		flagName = "verbose"
	)
	flag.BoolVar(&verbose, flagName, false, usage)
	flag.BoolVar(&verbose, "v", false, shorthandDesc(flagName))
}

func shorthandDesc(flagName string) string {
	return "(shorthand for -" + flagName + ")"
}

func verifyFlags() {
	var err flagError
	switch {
	case !(shouldUnpack || shouldReplace):
		err = "Either unpack or replace should be specified"
	case shouldUnpack && shouldReplace:
		err = "Both unpack and replace cannot be specified"
	case filePath == "":
		err = "filepath cannot be empty"
	case output == "":
		err = "output cannot be empty"
	case shouldReplace && targetPath == "":
		err = "target cannot be empty"
	}

	if err != "" {
		flag.Usage()
		log.Fatal(err)
	}
}

// Verifies that the extension of the input file is supported. Returns true if
// the file is a SoundBank file and false if it is a File Package file.
func verifyInputType() bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	isSoundBank := contains(soundBankExtensions, ext)
	isFilePackage := contains(filePackageExtensions, ext)
	if !(isSoundBank || isFilePackage) {
		flag.Usage()
		log.Fatalf("%s is not a supported input file type", ext)
	}
	return isSoundBank
}

func contains(sources []string, target string) bool {
	for _, s := range sources {
		if s == target {
			return true
		}
	}
	return false
}

// A container is an opened SoundBank or File Package.
type container interface {
	wwise.Container
	Close() error
}

func open(isSoundBank bool) container {
	var ctn container
	var err error
	if isSoundBank {
		ctn, err = bnk.Open(filePath, bnk.WithLogger(log))
	} else {
		ctn, err = pck.Open(filePath, pck.WithLogger(log))
	}
	if err != nil {
		log.WithError(err).Fatal("Could not parse .bnk or .pck file")
	}
	if verbose {
		fmt.Println(ctn)
	}
	return ctn
}

// resolveCues loads the cue table and resolves it against every SoundBank of
// ctn. It returns nil when no cue table was given.
func resolveCues(ctn container) *resolve.Resolver {
	if cuesPath == "" {
		return nil
	}
	r := resolve.NewResolver(resolve.WithLogger(log))
	if err := r.LoadCueTable(cuesPath); err != nil {
		log.WithError(err).Fatal("Could not load cue table")
	}
	switch c := ctn.(type) {
	case *bnk.File:
		r.ResolveFileIDs(c, nil)
	case *pck.File:
		var lang uint32
		if language != "" {
			id, ok := c.LanguageID(language)
			if !ok {
				log.Fatalf("The package has no language named %q", language)
			}
			lang = id
		}
		banks, err := c.SoundBanks()
		if err != nil {
			log.WithError(err).Warn("Some SoundBanks could not be parsed")
		}
		for _, b := range banks {
			if b != nil {
				r.ResolveFileIDs(b, c.BankLookup(lang))
			}
		}
	}
	return r
}

func unpack(isSoundBank bool) {
	ctn := open(isSoundBank)
	defer ctn.Close()
	cues := resolveCues(ctn)

	if err := os.MkdirAll(output, os.ModePerm); err != nil {
		log.WithError(err).Fatal("Could not create output directory")
	}
	total := int64(0)
	ids := ctn.MediaIDs()
	for _, id := range ids {
		var cue string
		if cues != nil {
			cue, _ = cues.CueNameForFileID(id)
		}
		filename := util.CanonicalWemName(id, cue)
		data, err := ctn.Media(id)
		if err != nil {
			log.WithError(err).Fatalf("Could not read wem %d", id)
		}
		err = os.WriteFile(filepath.Join(output, filename), data, 0644)
		if err != nil {
			log.WithError(err).Fatalf("Could not write wem file %q", filename)
		}
		total += int64(len(data))
	}
	fmt.Printf("Successfully wrote %d wem(s) to %s\n", len(ids), output)
	fmt.Printf("Wrote %d bytes in total\n", total)
}

func replace(isSoundBank bool) {
	ctn := open(isSoundBank)
	defer ctn.Close()

	entries, err := os.ReadDir(targetPath)
	if err != nil {
		log.WithError(err).Fatalf("Could not open target directory %q", targetPath)
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		id, ok := util.ParseWemName(name)
		if !ok {
			log.Infof("Ignoring %s: It is not named by a wem source ID", name)
			continue
		}
		if !ctn.ContainsMedia(id) {
			log.Infof("Ignoring %s: The source file holds no wem %d", name, id)
			continue
		}
		data, err := os.ReadFile(filepath.Join(targetPath, name))
		if err != nil {
			log.WithError(err).Warnf("Ignoring %s: Could not read file", name)
			continue
		}
		switch c := ctn.(type) {
		case *bnk.File:
			_, err = c.ReplaceWem(id, data, updateSizes)
		case *pck.File:
			_, err = c.ReplaceWem(id, data, updateSizes)
		}
		if err != nil {
			log.WithError(err).Fatalf("Could not replace wem %d with %s", id, name)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		log.Fatal("There are no replacement wems")
	}
	fmt.Printf("Using %d replacement wem(s): %s\n", len(names),
		strings.Join(names, ", "))

	// The source may still be read while writing, so the output is written to
	// a temporary file first.
	tmp, err := os.CreateTemp(filepath.Dir(output), filepath.Base(output)+".*")
	if err != nil {
		log.WithError(err).Fatal("Could not create output file")
	}
	total, err := ctn.WriteTo(tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		log.WithError(err).Fatal("Could not write output to file")
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		os.Remove(tmp.Name())
		log.WithError(err).Fatal("Could not move output into place")
	}
	fmt.Println("Sucessfuly replaced! Output file written to:", output)
	fmt.Printf("Wrote %d bytes in total\n", total)
}

func main() {
	flag.Parse()
	verifyFlags()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	isSoundBank := verifyInputType()

	switch {
	case shouldUnpack:
		unpack(isSoundBank)
	case shouldReplace:
		replace(isSoundBank)
	}
}
