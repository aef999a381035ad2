package scheduler

// CronExpression maps a site's crawl interval in hours to its cadence bucket,
// expressed as a standard 5-field cron spec. The tiering is deliberately
// coarse: admins pick an interval, the scheduler picks the nearest bucket.
func CronExpression(intervalHours float64) string {
	switch {
	case intervalHours < 1:
		return "*/30 * * * *"
	case intervalHours == 1:
		return "0 * * * *"
	case intervalHours <= 6:
		return "0 */2 * * *"
	case intervalHours <= 12:
		return "0 */6 * * *"
	case intervalHours <= 24:
		return "0 */12 * * *"
	default:
		return "0 0 * * *"
	}
}
