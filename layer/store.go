package layer

// Store 持有有序的图层集合以及全部修改操作。
//
// 所有操作都是同步的；对不存在的 id 调用任何操作都是无副作用的空操作。
// Store 本身不做并发保护，由持有者（editor.Session）串行化访问。
type Store struct {
	layers []TextLayer
	// lastID 是已发放过的最大 id，删除图层后也不会回退，保证 id 不被复用。
	lastID int
}

// NewStore 返回空的图层集合。
func NewStore() *Store { return &Store{} }

// Create 追加一个默认图层并返回它，id 为 max(现有 id, 已发放 id, 0) + 1。
func (s *Store) Create() TextLayer {
	l := Default(s.nextID())
	s.layers = append(s.layers, l)
	return l
}

// Add 以新 id 追加一个调用方给定的图层（id 字段会被覆盖）。
func (s *Store) Add(l TextLayer) TextLayer {
	l.ID = s.nextID()
	s.layers = append(s.layers, l)
	return l
}

func (s *Store) nextID() int {
	next := s.lastID
	for _, l := range s.layers {
		if l.ID > next {
			next = l.ID
		}
	}
	next++
	s.lastID = next
	return next
}

func (s *Store) index(id int) int {
	for i, l := range s.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Get 返回 id 对应图层的副本。
func (s *Store) Get(id int) (TextLayer, bool) {
	if i := s.index(id); i >= 0 {
		return s.layers[i], true
	}
	return TextLayer{}, false
}

// Set 依次应用赋值并整体替换图层记录。id 不存在时返回 false。
func (s *Store) Set(id int, attrs ...Attribute) (TextLayer, bool) {
	i := s.index(id)
	if i < 0 {
		return TextLayer{}, false
	}
	next := s.layers[i]
	for _, a := range attrs {
		next = a.Apply(next)
	}
	s.layers[i] = next
	return next, true
}

// Duplicate 复制除 id 以外的全部属性，副本追加到末尾。
func (s *Store) Duplicate(id int) (TextLayer, bool) {
	src, ok := s.Get(id)
	if !ok {
		return TextLayer{}, false
	}
	return s.Add(src), true
}

// Remove 删除图层；重复删除或删除不存在的 id 不会改变集合。
func (s *Store) Remove(id int) {
	i := s.index(id)
	if i < 0 {
		return
	}
	next := make([]TextLayer, 0, len(s.layers)-1)
	next = append(next, s.layers[:i]...)
	s.layers = append(next, s.layers[i+1:]...)
}

// Restack 把图层移到抠图之前（toFront）或之后，组内位置保持不变。
func (s *Store) Restack(id int, toFront bool) {
	z := 0
	if toFront {
		z = 1
	}
	s.Set(id, IsFrontAttr(toFront), ZIndexAttr(z))
}

// ToggleVisible 切换可见性。
func (s *Store) ToggleVisible(id int) {
	if l, ok := s.Get(id); ok {
		s.Set(id, VisibleAttr(!l.Visible))
	}
}

// ToggleStroke 打开或关闭描边。
func (s *Store) ToggleStroke(id int, on bool) {
	s.Set(id, IsStrokeAttr(on))
}

// Layers 返回当前集合的快照，调用方可以随意持有，不受后续修改影响。
func (s *Store) Layers() []TextLayer {
	out := make([]TextLayer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Len returns the number of layers.
func (s *Store) Len() int { return len(s.layers) }

// Reset 丢弃全部图层（加载新照片时调用），id 计数从头开始。
func (s *Store) Reset() {
	s.layers = nil
	s.lastID = 0
}

// Load 用给定列表替换集合，保留原有 id；id 计数推进到其中的最大值。
// 重复的 id 会被重新编号，保证唯一性。
func (s *Store) Load(layers []TextLayer) {
	s.Reset()
	seen := make(map[int]bool, len(layers))
	for _, l := range layers {
		if l.ID > s.lastID {
			s.lastID = l.ID
		}
	}
	for _, l := range layers {
		if l.ID <= 0 || seen[l.ID] {
			s.lastID++
			l.ID = s.lastID
		}
		seen[l.ID] = true
		s.layers = append(s.layers, l)
	}
}
