package orchestrator

// loopRepeatLimit is how many consecutive identical instructions trigger the
// loop guard.
const loopRepeatLimit = 3

// loopGuard detects the model issuing the same instruction to the same agent
// on the same step over and over. The ledger is supposed to move the step
// forward; an identical instruction three times in a row means it will not.
type loopGuard struct {
	stepIndex   int
	agentName   string
	instruction string
	repeats     int
}

// observe records an instruction about to be dispatched and reports whether
// the repeat limit has been reached.
func (g *loopGuard) observe(stepIndex int, agentName, instruction string) bool {
	if g.repeats > 0 && g.stepIndex == stepIndex && g.agentName == agentName && g.instruction == instruction {
		g.repeats++
	} else {
		g.stepIndex = stepIndex
		g.agentName = agentName
		g.instruction = instruction
		g.repeats = 1
	}
	return g.repeats >= loopRepeatLimit
}

// reset clears the guard, used when the step advances or the plan changes.
func (g *loopGuard) reset() {
	g.repeats = 0
	g.instruction = ""
	g.agentName = ""
}
