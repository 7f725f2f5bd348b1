// Package bt 极简行为树，节点按黑板类型参数化，避免在每个节点里做类型断言
package bt

// Status 节点执行状态
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusRunning:
		return "running"
	}
	return "unknown"
}

// Node 行为树节点
type Node[B any] interface {
	Tick(bb B) Status
}

// Selector 选择节点：遇到 Success/Running 停止，全 Failure 才 Failure
type Selector[B any] struct {
	Children []Node[B]
}

func (s *Selector[B]) Tick(bb B) Status {
	for _, child := range s.Children {
		if st := child.Tick(bb); st != StatusFailure {
			return st
		}
	}
	return StatusFailure
}

// Sequence 顺序节点：遇到 Failure/Running 停止，全 Success 才 Success
type Sequence[B any] struct {
	Children []Node[B]
}

func (s *Sequence[B]) Tick(bb B) Status {
	for _, child := range s.Children {
		if st := child.Tick(bb); st != StatusSuccess {
			return st
		}
	}
	return StatusSuccess
}

// Condition 条件节点，Check 为 nil 时视为失败
type Condition[B any] struct {
	Check func(bb B) bool
}

func (c *Condition[B]) Tick(bb B) Status {
	if c.Check != nil && c.Check(bb) {
		return StatusSuccess
	}
	return StatusFailure
}

// Action 动作节点，Do 为 nil 时视为失败
type Action[B any] struct {
	Do func(bb B) Status
}

func (a *Action[B]) Tick(bb B) Status {
	if a.Do == nil {
		return StatusFailure
	}
	return a.Do(bb)
}

// Not 取反子节点的成功/失败，Running 原样返回
type Not[B any] struct {
	Child Node[B]
}

func (n *Not[B]) Tick(bb B) Status {
	switch n.Child.Tick(bb) {
	case StatusSuccess:
		return StatusFailure
	case StatusFailure:
		return StatusSuccess
	}
	return StatusRunning
}

// Cond 便捷构造条件节点
func Cond[B any](check func(bb B) bool) Node[B] {
	return &Condition[B]{Check: check}
}

// Do 便捷构造动作节点
func Do[B any](do func(bb B) Status) Node[B] {
	return &Action[B]{Do: do}
}

// Seq 便捷构造顺序节点
func Seq[B any](children ...Node[B]) Node[B] {
	return &Sequence[B]{Children: children}
}

// Sel 便捷构造选择节点
func Sel[B any](children ...Node[B]) Node[B] {
	return &Selector[B]{Children: children}
}
