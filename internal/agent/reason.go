package agent

const (
	ReasonFinished     = "task finished"
	ReasonMaxSteps     = "max steps reached"
	ReasonTooManyFails = "too many failures"
	ReasonInterrupted  = "interrupted"
)

func humanizeReason(reason string) string {
	switch reason {
	case ReasonFinished:
		return "model explicitly finished the task"
	case ReasonMaxSteps:
		return "step limit reached"
	case ReasonTooManyFails:
		return "too many consecutive failing steps"
	case ReasonInterrupted:
		return "execution was interrupted (context cancelled)"
	default:
		return reason
	}
}
