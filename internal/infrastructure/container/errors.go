package container

import "errors"

// ErrNoRepositoryEnabled 错误：启用了存储但没有任何仓储
var ErrNoRepositoryEnabled = errors.New("storage enabled but no repository configured")

// ErrUnknownEphemerisDriver 错误：未知的星历驱动
var ErrUnknownEphemerisDriver = errors.New("unknown ephemeris driver")

// ErrCacheWithoutRedis 错误：启用星历缓存但 Redis 未初始化
var ErrCacheWithoutRedis = errors.New("ephemeris cache requires redis")
