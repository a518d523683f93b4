package checker_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/latticelabs/seclat/checker"
)

func TestAnalyzerBlocks(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), checker.Analyzer, "blocks")
}

func TestAnalyzerCrossPackageFacts(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), checker.Analyzer, "use")
}
