package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/notargets/lesfilter/InputParameters"
	"github.com/notargets/lesfilter/config"
)

const exampleCase = `
########################################
Title: "Ramp"
Mesh:
  Cells: [5, 1, 1]
  Extent: [5, 1, 1]
  PatchTypes: {yMin: empty, yMax: empty, zMin: empty, zMax: empty}
Filter:
  filter: polyLaplaceResidual
  polyLaplaceResidualCoeffs: {d1: 1, d2: 0}
Fields:
  - Name: T
    Kind: scalar # vector, symmTensor or tensor
    Profile: {Type: linear, Value: [1], Direction: [1, 0, 0], Shift: -0.5}
    BCs:
      xMin: {Type: zeroGradient}
      xMax: {Type: zeroGradient}
########################################
`

func readCase(caseFile string) (cp *InputParameters.CaseParameters, err error) {
	if len(caseFile) == 0 {
		err = fmt.Errorf("must supply a case file (-I, --inputConditionsFile) in YAML format")
		return
	}
	var data []byte
	if data, err = os.ReadFile(caseFile); err != nil {
		return
	}
	cp = &InputParameters.CaseParameters{}
	if err = cp.Parse(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", caseFile, err)
	}
	return
}

// processCase reads the case file or exits with an example of one
func processCase(caseFile string) (cp *InputParameters.CaseParameters) {
	var err error
	if cp, err = readCase(caseFile); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		fmt.Printf("Example File:%s\n", exampleCase)
		os.Exit(1)
	}
	return
}

// filterDict reads dictFile when given, else takes the Filter dictionary of
// the case, else the filter section of the config file
func filterDict(cp *InputParameters.CaseParameters, dictFile string) (dict *config.Dict, err error) {
	if dictFile != "" {
		return config.ReadDictFile(dictFile)
	}
	if len(cp.Filter) != 0 {
		return cp.FilterDict(), nil
	}
	if sub := viper.Sub("filter"); sub != nil {
		return config.FromViper("filter", sub), nil
	}
	err = fmt.Errorf("case %q has no Filter dictionary and the config file has no filter section", cp.Title)
	return
}
