package core

// Handle 指向 arena 中某个槽位的句柄，携带代数以检测槽位复用
// 零值表示“无”
type Handle[T any] struct {
	index int32
	gen   uint32
}

// Valid 句柄是否非零（不代表目标仍然存活，需通过 arena 查询）
func (h Handle[T]) Valid() bool {
	return h.gen != 0
}

type slot[T any] struct {
	gen   uint32
	alive bool
	value T
}

// arena 实体存储：删除后槽位代数递增，旧句柄随之失效
type arena[T any] struct {
	slots []slot[T]
	free  []int32
	count int
}

// insert 存入实体，返回句柄与槽内指针
func (a *arena[T]) insert(value T) (Handle[T], *T) {
	var idx int32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot[T]{})
		idx = int32(len(a.slots) - 1)
	}
	s := &a.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1 // 回绕时跳过零值
	}
	s.alive = true
	s.value = value
	a.count++
	return Handle[T]{index: idx, gen: s.gen}, &s.value
}

// get 查询句柄，失效时返回 nil
func (a *arena[T]) get(h Handle[T]) *T {
	if !h.Valid() || int(h.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.index]
	if !s.alive || s.gen != h.gen {
		return nil
	}
	return &s.value
}

// remove 释放槽位
func (a *arena[T]) remove(h Handle[T]) bool {
	if a.get(h) == nil {
		return false
	}
	s := &a.slots[h.index]
	var zero T
	s.value = zero
	s.alive = false
	a.free = append(a.free, h.index)
	a.count--
	return true
}

// each 按槽位顺序遍历存活实体，fn 返回 false 时停止
func (a *arena[T]) each(fn func(h Handle[T], v *T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.alive {
			continue
		}
		if !fn(Handle[T]{index: int32(i), gen: s.gen}, &s.value) {
			return
		}
	}
}

// len 存活实体数量
func (a *arena[T]) len() int {
	return a.count
}

// clear 清空所有实体，已发出的句柄全部失效
func (a *arena[T]) clear() {
	a.free = a.free[:0]
	for i := range a.slots {
		s := &a.slots[i]
		if s.alive {
			var zero T
			s.value = zero
			s.alive = false
		}
		a.free = append(a.free, int32(i))
	}
	a.count = 0
}
