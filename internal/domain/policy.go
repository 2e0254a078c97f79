package domain

// RetentionPolicy maps time buckets to how many snapshots to keep in
// each. A nil bucket means unconstrained for that granularity, which is
// not the same as keeping zero.
type RetentionPolicy struct {
	KeepLast    *int `mapstructure:"keep_last"`
	KeepHourly  *int `mapstructure:"keep_hourly"`
	KeepDaily   *int `mapstructure:"keep_daily"`
	KeepWeekly  *int `mapstructure:"keep_weekly"`
	KeepMonthly *int `mapstructure:"keep_monthly"`
	KeepYearly  *int `mapstructure:"keep_yearly"`
}

// IsZero reports whether no bucket is set at all.
func (p RetentionPolicy) IsZero() bool {
	return p.KeepLast == nil && p.KeepHourly == nil && p.KeepDaily == nil &&
		p.KeepWeekly == nil && p.KeepMonthly == nil && p.KeepYearly == nil
}

// BackupOptions scope a single backup invocation.
type BackupOptions struct {
	Tag         string
	Excludes    []string
	ExcludeFile string
}
