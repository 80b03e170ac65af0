package negotiation

import (
	"fmt"
	"slices"
)

// Status 报价状态，取值与线上协议保持一致
type Status string

const (
	Pending   Status = "PENDING"
	Accepted  Status = "ACCEPTED"
	Rejected  Status = "REJECTED"
	Countered Status = "COUNTERED"
)

// validTransitions 合法的状态迁移，终态没有出边
var validTransitions = map[Status][]Status{
	Pending:   {Accepted, Rejected, Countered},
	Accepted:  {},
	Rejected:  {},
	Countered: {},
}

// ParseStatus 严格解析状态字符串，大小写敏感
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := validTransitions[st]; !ok {
		return "", fmt.Errorf("unknown offer status %q", s)
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal 是否为终态
func (s Status) IsTerminal() bool {
	return s == Accepted || s == Rejected || s == Countered
}

// CanTransition 判断 from -> to 是否合法
func CanTransition(from, to Status) bool {
	return slices.Contains(validTransitions[from], to)
}

// IsResponse 是否为接受/拒绝这类直接答复
func IsResponse(s Status) bool {
	return s == Accepted || s == Rejected
}
