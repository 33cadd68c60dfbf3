/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/notargets/golbm/InputParameters"
	"github.com/notargets/golbm/readfiles"
)

// PrepareCmd converts a YAML scene configuration and its bitmap into a scene file
var PrepareCmd = &cobra.Command{
	Use:   "prepare <config.yaml>",
	Short: "Prepare a scene file from a YAML configuration and a domain bitmap",
	Long: `Prepare a scene file from a YAML configuration and a domain bitmap

Each pixel of the bitmap is matched against the configured colors to get its cell type,
initial density and velocity. Regions then override rectangles of cells. The scene is
written next to the configuration with a .dat extension unless -o is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outFile, _ := cmd.Flags().GetString("output")
		_, err := PrepareSceneFile(args[0], outFile, slog.Default())
		return err
	},
}

func init() {
	rootCmd.AddCommand(PrepareCmd)
	PrepareCmd.Flags().StringP("output", "o", "", "scene file to write, defaults to the configuration name with .dat")
}

// PrepareSceneFile prepares the scene of a configuration file and writes it, returning the written file name.
func PrepareSceneFile(configFile, outFile string, logger *slog.Logger) (fileName string, err error) {
	var (
		ip *InputParameters.InputParametersLBM
		sc *readfiles.Scene
	)
	if ip, err = ReadInputParameters(configFile); err != nil {
		return
	}
	ip.Print()
	if sc, err = readfiles.PrepareScene(ip, filepath.Dir(configFile), logger); err != nil {
		return
	}
	fileName = outFile
	if len(fileName) == 0 {
		fileName = readfiles.SceneFileName(configFile)
	}
	if err = readfiles.WriteSceneFile(fileName, sc); err != nil {
		return "", fmt.Errorf("writing scene: %w", err)
	}
	logger.Info("scene written", "file", fileName,
		"width", sc.Dimensions[0], "height", sc.Dimensions[1], "tau", sc.Tau)
	return
}
