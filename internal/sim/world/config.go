package world

type Config struct {
	ID string

	// Hard capacity: both province buffers are allocated to this size once and
	// never grow. Soft limit is scale guidance only (one-time warning).
	ProvinceCapacity  int
	SoftProvinceLimit int

	// Cadence of the bulk modifier sweep, in ticks.
	DecayEveryTicks int

	TickRateHz         int
	SnapshotEveryTicks int
}

func (c *Config) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.ProvinceCapacity <= 0 {
		c.ProvinceCapacity = 16384
	}
	if c.SoftProvinceLimit <= 0 {
		c.SoftProvinceLimit = 10000
	}
	if c.SoftProvinceLimit > c.ProvinceCapacity {
		c.SoftProvinceLimit = c.ProvinceCapacity
	}
	if c.DecayEveryTicks <= 0 {
		c.DecayEveryTicks = 24
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 5
	}
	if c.SnapshotEveryTicks <= 0 {
		c.SnapshotEveryTicks = 3000
	}
}
