package pipelinenode

func FinalizeReport(in *GraphState) (Report, error) {
	if in == nil {
		return Report{}, nilStateErr()
	}
	return in.Report, nil
}
