package reservation

// Status は予約の状態を表す
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
)

// transitions は許可される状態遷移の表
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn:  {StatusCheckedOut},
	StatusCheckedOut: {},
	StatusCancelled:  {},
}

// Valid は定義済みの状態かを返す
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal は終端状態かを返す
func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo は next への遷移が許可されているかを返す
func (s Status) CanTransitionTo(next Status) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// BlocksAvailability は空室判定で日程を占有する状態かを返す
func (s Status) BlocksAvailability() bool {
	return s != StatusCancelled
}
