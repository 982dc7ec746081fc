package main

// #include <stdint.h>
import "C"

import "github.com/odbccore/engine/internal/engine"

// odbc_pool_create opens a database handle with an explicit pool size
// overriding whatever the connection string or engine defaults specify
// (spec §6.1). See Engine.PoolCreate's doc comment for why this returns a
// handle from the same space as odbc_connect rather than a distinct kind.
//
//export odbc_pool_create
func odbc_pool_create(connStr *C.char, maxSize C.int32_t) C.uint32_t {
	var id uint32
	engine.Guard(func() error {
		var err error
		id, err = engineOrInit().PoolCreate(cString(connStr), int(maxSize))
		return err
	})
	return C.uint32_t(id)
}

// odbc_pool_health_check runs the pool's idle-connection health check on
// demand, outside its background loop (spec §4.8).
//
//export odbc_pool_health_check
func odbc_pool_health_check(dbHandle C.uint32_t, checkedOut *C.int32_t, evictedOut *C.int32_t) C.int32_t {
	var checked, evicted int
	var callErr error
	ok := engine.Guard(func() error {
		var err error
		checked, evicted, err = engineOrInit().PoolHealthCheck(bgCtx, uint32(dbHandle))
		callErr = err
		return err
	})
	if !ok {
		return codeFromErr(callErr)
	}
	if checkedOut != nil {
		*checkedOut = C.int32_t(checked)
	}
	if evictedOut != nil {
		*evictedOut = C.int32_t(evicted)
	}
	return 0
}

// odbc_pool_get_state reports a pool's current size/idle counts (spec §6.1
// odbc_pool_get_state(id, *size, *idle)).
//
//export odbc_pool_get_state
func odbc_pool_get_state(dbHandle C.uint32_t, sizeOut *C.int32_t, idleOut *C.int32_t) C.int32_t {
	var callErr error
	var size, idle int
	ok := engine.Guard(func() error {
		st, err := engineOrInit().PoolState(uint32(dbHandle))
		callErr = err
		if err != nil {
			return err
		}
		size = st.InUseCount + st.IdleCount
		idle = st.IdleCount
		return nil
	})
	if !ok {
		return codeFromErr(callErr)
	}
	if sizeOut != nil {
		*sizeOut = C.int32_t(size)
	}
	if idleOut != nil {
		*idleOut = C.int32_t(idle)
	}
	return 0
}

// odbc_pool_close is an alias of odbc_disconnect at the ABI level: both tear
// down the same underlying database handle (see Engine.PoolCreate's doc
// comment).
//
//export odbc_pool_close
func odbc_pool_close(dbHandle C.uint32_t) C.int32_t {
	return odbc_disconnect(dbHandle)
}
