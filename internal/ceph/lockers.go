package ceph

/*
#include <stdlib.h>
#include <rados/librados.h>
*/
import "C"

import (
	"bytes"
	"unsafe"

	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/ceph/go-ceph/rados"
)

const (
	// lockerBufSize is the size of each buffer on the first query.
	lockerBufSize = 1024
	// maxLockerQueries bounds the queries of one listing when the lockers
	// keep growing between them.
	maxLockerQueries = 8
)

// listLockers lists the holders of the lock name on oid. librados reports
// -ERANGE along with the sizes it needs when a buffer is too small; the
// buffers are then grown to those sizes and the query made again.
func listLockers(ioctx *rados.IOContext, oid, name string) (*storage.LockInfo, error) {
	coid := C.CString(oid)
	defer C.free(unsafe.Pointer(coid))
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	tagLen := C.size_t(lockerBufSize)
	clientsLen := C.size_t(lockerBufSize)
	cookiesLen := C.size_t(lockerBufSize)
	addrsLen := C.size_t(lockerBufSize)

	for i := 0; i < maxLockerQueries; i++ {
		tag := make([]byte, bufSize(tagLen))
		clients := make([]byte, bufSize(clientsLen))
		cookies := make([]byte, bufSize(cookiesLen))
		addrs := make([]byte, bufSize(addrsLen))
		var exclusive C.int

		ret := C.rados_list_lockers(
			C.rados_ioctx_t(ioctx.Pointer()),
			coid,
			cname,
			&exclusive,
			cbuf(tag), &tagLen,
			cbuf(clients), &clientsLen,
			cbuf(cookies), &cookiesLen,
			cbuf(addrs), &addrsLen,
		)
		if storage.StatusError(ret) == storage.ErrRange {
			continue
		}
		if ret < 0 {
			return nil, storage.StatusError(int(ret))
		}

		n := int(ret)
		info := &storage.LockInfo{
			Exclusive: exclusive == 1,
			Clients:   splitStrings(clients[:int(clientsLen)], n),
			Cookies:   splitStrings(cookies[:int(cookiesLen)], n),
			Addrs:     splitStrings(addrs[:int(addrsLen)], n),
		}
		if tags := splitStrings(tag[:int(tagLen)], 1); len(tags) == 1 {
			info.Tag = tags[0]
		}
		return info, nil
	}
	return nil, storage.ErrRange
}

// bufSize keeps every buffer at least one byte long so it has an address.
func bufSize(n C.size_t) int {
	if n < 1 {
		return 1
	}
	return int(n)
}

func cbuf(b []byte) *C.char {
	return (*C.char)(unsafe.Pointer(&b[0]))
}

// splitStrings returns the first n NUL terminated strings packed in buf.
func splitStrings(buf []byte, n int) []string {
	out := make([]string, 0, n)
	for len(out) < n && len(buf) > 0 {
		i := bytes.IndexByte(buf, 0)
		if i < 0 {
			out = append(out, string(buf))
			break
		}
		out = append(out, string(buf[:i]))
		buf = buf[i+1:]
	}
	return out
}
