package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/lesfilter/InputParameters"
	"github.com/notargets/lesfilter/field"
	"github.com/notargets/lesfilter/filter"
	"github.com/notargets/lesfilter/mesh"
)

// SpacingRange is the extent of the squared spacing over one set of faces
type SpacingRange struct {
	Name     string
	Empty    bool
	Min, Max float64
}

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Print the mesh of a case and its squared face spacing",
	Long: `
Builds or reads the case mesh and prints its statistics with the range of the
squared face spacing used to weight the filter Laplacians.

lesfilter mesh -I case.yaml [-F mesh.su2]`,
	Run: func(cmd *cobra.Command, args []string) {
		caseFile, _ := cmd.Flags().GetString("inputConditionsFile")
		meshFile, _ := cmd.Flags().GetString("meshFile")
		cp := processCase(caseFile)
		if viper.GetBool("verbose") {
			cp.Print()
		}
		if _, err := RunMesh(cp, meshFile); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(MeshCmd)
	MeshCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML case file with the mesh")
	MeshCmd.Flags().StringP("meshFile", "F", "", "SU2 mesh file, overrides the case mesh")
}

func RunMesh(cp *InputParameters.CaseParameters, meshFile string) (ranges []SpacingRange, err error) {
	var (
		m *mesh.Mesh
	)
	if m, err = cp.Mesh.BuildMesh(meshFile); err != nil {
		return
	}
	m.Statistics().Print()
	ranges = spacingRanges(filter.NewDeltaSquared(m))
	fmt.Printf("deltaSquared:\n")
	for _, r := range ranges {
		switch {
		case r.Empty:
			fmt.Printf("  %-16s empty\n", r.Name)
		default:
			fmt.Printf("  %-16s min %12.5e max %12.5e\n", r.Name, r.Min, r.Max)
		}
	}
	return
}

func spacingRanges(ds *field.SurfaceScalarField) (ranges []SpacingRange) {
	add := func(name string, empty bool, vals []float64) {
		r := SpacingRange{Name: name, Empty: empty}
		if !empty && len(vals) != 0 {
			r.Min, r.Max = floats.Min(vals), floats.Max(vals)
		}
		ranges = append(ranges, r)
	}
	add("internal", false, ds.Internal)
	for pI, p := range ds.Mesh.Patches {
		add(p.Name, p.Type.IsDegenerate(), ds.Boundary[pI])
	}
	return
}
