package strategy

import (
	"time"
)

// BucketOf 时间所在的分钟, 按展示时区计算
func BucketOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Truncate(time.Minute)
}

// DedupTracker 记录每分钟已经触发过的交易所
// 只由扫描循环所在的 goroutine 读写, 不加锁
type DedupTracker struct {
	retention time.Duration
	buckets   map[int64]map[string]struct{}
}

func NewDedupTracker(retention time.Duration) *DedupTracker {
	if retention < time.Minute {
		retention = time.Minute
	}
	return &DedupTracker{
		retention: retention,
		buckets:   make(map[int64]map[string]struct{}),
	}
}

func (d *DedupTracker) Triggered(bucket time.Time, exchange string) bool {
	_, ok := d.buckets[bucket.Unix()][exchange]
	return ok
}

func (d *DedupTracker) Mark(bucket time.Time, exchange string) {
	key := bucket.Unix()
	set, ok := d.buckets[key]
	if !ok {
		set = make(map[string]struct{})
		d.buckets[key] = set
	}
	set[exchange] = struct{}{}
}

// Prune 删除早于 now - retention 的分钟, 返回删除数量
func (d *DedupTracker) Prune(now time.Time) int {
	cutoff := now.Add(-d.retention).Unix()
	removed := 0
	for key := range d.buckets {
		if key < cutoff {
			delete(d.buckets, key)
			removed++
		}
	}
	return removed
}

// Len 当前保留的分钟数
func (d *DedupTracker) Len() int {
	return len(d.buckets)
}

// Cooldown 每种异动类型最近一次放行的时间
type Cooldown struct {
	last map[AlertType]time.Time
}

func NewCooldown() *Cooldown {
	return &Cooldown{last: make(map[AlertType]time.Time)}
}

func (c *Cooldown) Record(typ AlertType, now time.Time) {
	c.last[typ] = now
}

// Remaining 距离冷却结束还有多久, <= 0 表示可以放行
func (c *Cooldown) Remaining(typ AlertType, now time.Time, window time.Duration) time.Duration {
	last, ok := c.last[typ]
	if !ok {
		return 0
	}
	return window - now.Sub(last)
}
