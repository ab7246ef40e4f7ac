package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/railchess/aarc2rc"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <input.json> <output.json> [--config <config.json|yaml>] [--geojson <out.geojson>]\n", os.Args[0])
	os.Exit(1)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// readConfig loads the config descriptor, accepting YAML files alongside
// JSON and converting them to the same document.
func readConfig(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read config file")
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		var v interface{}
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(err, "Can't parse YAML config")
		}
		data, err = json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "Can't convert YAML config")
		}
	}
	return data, nil
}

func main() {
	var inputPath, outputPath, configPath, geojsonPath string

	args := os.Args[1:]
	switch {
	case len(args) == 0:
		reader := bufio.NewReader(os.Stdin)
		fmt.Println("Railchess AARC to RC Converter")
		inputPath = prompt(reader, "Enter input AARC file path: ")
		outputPath = prompt(reader, "Enter output RC file path:  ")
		configPath = prompt(reader, "Enter config file path (or leave empty for default): ")
	case len(args) >= 2:
		inputPath = args[0]
		outputPath = args[1]
		rest := args[2:]
		for len(rest) > 0 {
			switch rest[0] {
			case "--config":
				if len(rest) < 2 {
					usage()
				}
				configPath = rest[1]
				rest = rest[2:]
			case "--geojson":
				if len(rest) < 2 {
					usage()
				}
				geojsonPath = rest[1]
				rest = rest[2:]
			default:
				usage()
			}
		}
	default:
		usage()
	}

	if err := run(inputPath, outputPath, configPath, geojsonPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath, configPath, geojsonPath string) error {
	aarcData, err := os.ReadFile(inputPath)
	if err != nil {
		return errors.Wrap(err, "Can't read input file")
	}

	var configData []byte
	if configPath != "" {
		configData, err = readConfig(configPath)
		if err != nil {
			return err
		}
	}

	m, err := aarc2rc.BuildMap(aarcData, configData)
	if err != nil {
		return err
	}
	rcmap, err := aarc2rc.ConvertToRC(m, nil)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(rcmap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "Can't encode RC map")
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return errors.Wrap(err, "Can't write output file")
	}

	if geojsonPath != "" {
		gj, err := aarc2rc.PrepareGeoJSON(rcmap)
		if err != nil {
			return errors.Wrap(err, "Can't prepare GeoJSON")
		}
		if err := os.WriteFile(geojsonPath, gj, 0644); err != nil {
			return errors.Wrap(err, "Can't write GeoJSON file")
		}
	}

	return nil
}
