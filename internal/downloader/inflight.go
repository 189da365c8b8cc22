package downloader

import "sync"

// inflightRegistry 以剪辑 id 为键记录进行中的下载，保证同一剪辑同一时刻
// 至多一个子进程在跑。并发请求撞到同一 id 时直接跳过而非排队等待。
type inflightRegistry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{active: make(map[string]struct{})}
}

// acquire 尝试占用 id，已被占用时返回 false。
func (r *inflightRegistry) acquire(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.active[id]; busy {
		return false
	}
	r.active[id] = struct{}{}
	return true
}

func (r *inflightRegistry) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
}
