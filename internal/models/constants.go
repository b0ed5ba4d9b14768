package models

const (
	DateLayout = "2006-01-02"
)

const (
	// DefaultBookingTimeStepMinutes шаг между слотами, если у ресторана он не задан
	DefaultBookingTimeStepMinutes = 15

	// DefaultSlotCacheTTL время жизни списка слотов в кэше
	DefaultSlotCacheTTL = 30 * 60 // 30 минут в секундах

	// DefaultWarmDays на сколько дней вперед прогревается кэш
	DefaultWarmDays = 14

	// MaxSlotRangeDays максимальная длина запрашиваемого диапазона дат
	MaxSlotRangeDays = 31

	// RateLimitBurst размер всплеска для API по умолчанию
	RateLimitBurst = 5
)
