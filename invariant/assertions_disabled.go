//go:build disable_assertions

package invariant

func registerAssertion() {
}

func RegisterPackagesForAnalysis(dirs ...string) {
}

func AnalyzeAssertionFrequency() {
}

func Always(cond bool, msg string) {
}

func Sometimes(cond bool, msg string) {
}

func Unreachable(msg string) {
}
