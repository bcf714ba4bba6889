// Package ceph adapts a Ceph cluster to the storage interfaces. Plain RADOS
// calls go through go-ceph; the striper and write-op flags, which go-ceph
// does not wrap, are bound directly to librados and libradosstriper.
package ceph

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/ceph/go-ceph/rados"
	"github.com/rs/zerolog"
)

// Default striper layout: 4M stripe unit, one stripe, 4M objects.
const (
	DefaultStripeUnit  = 4 << 20
	DefaultStripeCount = 1
	DefaultObjectSize  = 4 << 20
)

// Layout is the striper layout applied to objects this cluster creates.
type Layout struct {
	StripeUnit  uint
	StripeCount uint
	ObjectSize  uint
}

// DefaultLayout returns the default striper layout.
func DefaultLayout() Layout {
	return Layout{
		StripeUnit:  DefaultStripeUnit,
		StripeCount: DefaultStripeCount,
		ObjectSize:  DefaultObjectSize,
	}
}

// Options describe how to connect to a cluster.
type Options struct {
	// User is the cephx user name, without the "client." prefix.
	User string
	// MonTimeout and OsdTimeout are passed as rados_mon_op_timeout and
	// rados_osd_op_timeout. "0" disables the timeout.
	MonTimeout string
	OsdTimeout string
	Layout     Layout
}

var _ storage.PoolProvider = (*Cluster)(nil)

// Cluster is a connection to one Ceph cluster, named by its FSID.
type Cluster struct {
	Name       string
	InstanceID uint64

	log    zerolog.Logger
	conn   *rados.Conn
	layout Layout
}

// Connect reads configFile and connects to the cluster it describes.
func Connect(log zerolog.Logger, configFile string, opts Options) (*Cluster, error) {
	conn, err := rados.NewConnWithUser(opts.User)
	if err != nil {
		return nil, fmt.Errorf("rados new conn: %w", err)
	}
	if opts.MonTimeout != "" {
		if err := conn.SetConfigOption("rados_mon_op_timeout", opts.MonTimeout); err != nil {
			return nil, fmt.Errorf("set rados_mon_op_timeout: %w", err)
		}
	}
	if opts.OsdTimeout != "" {
		if err := conn.SetConfigOption("rados_osd_op_timeout", opts.OsdTimeout); err != nil {
			return nil, fmt.Errorf("set rados_osd_op_timeout: %w", err)
		}
	}
	if err := conn.ReadConfigFile(configFile); err != nil {
		return nil, fmt.Errorf("read %s: %w", configFile, err)
	}
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("connect to cluster of %s: %w", configFile, err)
	}

	name, err := conn.GetFSID()
	if err != nil {
		conn.Shutdown()
		return nil, fmt.Errorf("get FSID of %s: %w", configFile, err)
	}

	c := &Cluster{
		Name:       name,
		InstanceID: conn.GetInstanceID(),
		conn:       conn,
		layout:     opts.Layout,
	}
	c.log = log.With().Str("cluster", name).Logger()
	c.
		log.
		Info().
		Str("config", configFile).
		Uint64("instance", c.InstanceID).
		Msg("cluster is ready")
	return c, nil
}

// Discover connects to every cluster whose configuration file matches
// pattern, keyed by cluster name.
func Discover(log zerolog.Logger, pattern string, opts Options) (map[string]*Cluster, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad ceph config pattern %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no ceph config matches %q", pattern)
	}

	clusters := make(map[string]*Cluster)
	for _, f := range files {
		c, err := Connect(log, f, opts)
		if err != nil {
			for _, opened := range clusters {
				opened.Shutdown()
			}
			return nil, err
		}
		clusters[c.Name] = c
	}
	return clusters, nil
}

// Pool opens the pool called name. The caller must Close it.
func (c *Cluster) Pool(name string) (storage.Pool, error) {
	p, err := c.OpenPool(name)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// OpenPool opens an IO context and a striper on the pool called name.
func (c *Cluster) OpenPool(name string) (*Pool, error) {
	ioctx, err := c.conn.OpenIOContext(name)
	if err != nil {
		if errors.Is(err, rados.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", storage.ErrPoolNotFound, name)
		}
		return nil, fmt.Errorf("open pool %s: %w", name, storage.AsStatus(err))
	}

	st, err := newStriper(ioctx, c.layout)
	if err != nil {
		ioctx.Destroy()
		return nil, fmt.Errorf("create striper on pool %s: %w", name, err)
	}

	c.
		log.
		Debug().
		Str("pool", name).
		Msg("pool opened")
	return &Pool{name: name, ioctx: ioctx, striper: st}, nil
}

// Shutdown disconnects from the cluster. Pools opened from it must be
// closed first.
func (c *Cluster) Shutdown() {
	c.conn.Shutdown()
}
