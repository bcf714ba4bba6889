package ceph

/*
#cgo LDFLAGS: -lrados -lradosstriper
#include <stdlib.h>
#include <time.h>
#include <rados/librados.h>
#include <radosstriper/libradosstriper.h>
*/
import "C"

import (
	"time"
	"unsafe"

	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/ceph/go-ceph/rados"
)

type striper struct {
	s C.rados_striper_t
}

func newStriper(ioctx *rados.IOContext, layout Layout) (*striper, error) {
	st := &striper{}
	ret := C.rados_striper_create(C.rados_ioctx_t(ioctx.Pointer()), &st.s)
	if ret < 0 {
		return nil, storage.StatusError(int(ret))
	}
	if err := st.setLayout(layout); err != nil {
		st.destroy()
		return nil, err
	}
	return st, nil
}

func (st *striper) setLayout(layout Layout) error {
	if layout.StripeUnit != 0 {
		if ret := C.rados_striper_set_object_layout_stripe_unit(st.s, C.uint(layout.StripeUnit)); ret < 0 {
			return storage.StatusError(int(ret))
		}
	}
	if layout.ObjectSize != 0 {
		if ret := C.rados_striper_set_object_layout_object_size(st.s, C.uint(layout.ObjectSize)); ret < 0 {
			return storage.StatusError(int(ret))
		}
	}
	if layout.StripeCount != 0 {
		if ret := C.rados_striper_set_object_layout_stripe_count(st.s, C.uint(layout.StripeCount)); ret < 0 {
			return storage.StatusError(int(ret))
		}
	}
	return nil
}

func (st *striper) remove(oid string) error {
	coid := C.CString(oid)
	defer C.free(unsafe.Pointer(coid))

	if ret := C.rados_striper_remove(st.s, coid); ret < 0 {
		return storage.StatusError(int(ret))
	}
	return nil
}

func (st *striper) stat(oid string) (uint64, time.Time, error) {
	coid := C.CString(oid)
	defer C.free(unsafe.Pointer(coid))

	var size C.uint64_t
	var mtime C.time_t
	if ret := C.rados_striper_stat(st.s, coid, &size, &mtime); ret < 0 {
		return 0, time.Time{}, storage.StatusError(int(ret))
	}
	return uint64(size), time.Unix(int64(mtime), 0), nil
}

func (st *striper) destroy() {
	C.rados_striper_destroy(st.s)
}

var _ storage.WriteOp = (*writeOp)(nil)

// writeOp wraps rados_write_op_t. go-ceph has no way to set per-step op
// flags, which the new-object hint needs.
type writeOp struct {
	op    C.rados_write_op_t
	ioctx *rados.IOContext
}

func newWriteOp(ioctx *rados.IOContext) *writeOp {
	return &writeOp{
		op:    C.rados_create_write_op(),
		ioctx: ioctx,
	}
}

// Write adds a write of data at offset. librados copies the buffer.
func (w *writeOp) Write(data []byte, offset uint64) {
	var buf *C.char
	if len(data) > 0 {
		buf = (*C.char)(unsafe.Pointer(&data[0]))
	}
	C.rados_write_op_write(w.op, buf, C.size_t(len(data)), C.uint64_t(offset))
}

// SetFlags sets op flags on the last step added.
func (w *writeOp) SetFlags(flags uint32) {
	C.rados_write_op_set_flags(w.op, C.int(int32(flags)))
}

// Operate executes the operation against oid.
func (w *writeOp) Operate(oid string) error {
	coid := C.CString(oid)
	defer C.free(unsafe.Pointer(coid))

	ret := C.rados_write_op_operate(w.op, C.rados_ioctx_t(w.ioctx.Pointer()), coid, nil, 0)
	if ret < 0 {
		return storage.StatusError(int(ret))
	}
	return nil
}

// Release frees the operation.
func (w *writeOp) Release() {
	C.rados_release_write_op(w.op)
}
