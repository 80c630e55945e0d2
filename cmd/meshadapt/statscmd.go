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
package meshadapt

import (
	"github.com/spf13/cobra"
)

// StatsCmd represents the stats command
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print quality statistics of a freshly generated box mesh",
	Run: func(cmd *cobra.Command, args []string) {
		nx, _ := cmd.Flags().GetInt("nx")
		ny, _ := cmd.Flags().GetInt("ny")
		mesh := buildBoxMesh2D(nx, ny)
		computeStats(mesh).Print("box mesh")
	},
}

func init() {
	RootCmd.AddCommand(StatsCmd)
	StatsCmd.Flags().Int("nx", 8, "number of box-mesh cells in x")
	StatsCmd.Flags().Int("ny", 8, "number of box-mesh cells in y")
}
