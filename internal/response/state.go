package response

// State is the outcome code carried in every envelope. It is encoded as its
// integer value.
type State int

const (
	StateNormalError State = iota
	StateSuccess
	StateLoginRequired
	StateInvalidArgument
	StateVendorError
)

func (s State) String() string {
	switch s {
	case StateNormalError:
		return "normal_error"
	case StateSuccess:
		return "success"
	case StateLoginRequired:
		return "login_required"
	case StateInvalidArgument:
		return "invalid_argument"
	case StateVendorError:
		return "vendor_error"
	}
	return "unknown"
}
