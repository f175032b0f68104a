package tokenmap

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/justloop/tokenmap/host"
	"github.com/justloop/tokenmap/partition"
	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKeys = []string{"test", "abc", "def", "a", "b", "c", "d"}

type assignment struct {
	token string
	host  host.Host
}

func newTestTokenMap(t *testing.T, partitioner string) *Impl {
	m, err := New(&Config{Partitioner: partitioner})
	require.Nil(t, err, "New return error")
	return m
}

// populate adds one token per call, tokens of a host may come in any order
func populate(t *testing.T, m *Impl, assignments []assignment) {
	for _, a := range assignments {
		if m.Partitioner().Name() == partition.ByteOrderedPartitionerName {
			m.AddHostTokens(a.host, []string{a.token})
			continue
		}
		encoded, err := EncodeTokens([]string{a.token})
		require.Nil(t, err, "EncodeTokens return error")
		m.AddHost(a.host, encoded)
	}
}

// expectedReplicas walks the assignments forward from the hash of key, the way a SimpleStrategy does
func expectedReplicas(p partition.Partitioner, assignments []assignment, key string, rf int) []string {
	sorted := make([]assignment, len(assignments))
	copy(sorted, assignments)
	sort.Slice(sorted, func(i, j int) bool {
		return p.ParseString(sorted[i].token).Compare(p.ParseString(sorted[j].token)) < 0
	})
	if len(sorted) == 0 {
		return nil
	}

	hash := p.Hash([]byte(key))
	start := sort.Search(len(sorted), func(i int) bool {
		return p.ParseString(sorted[i].token).Compare(hash) >= 0
	})
	if start == len(sorted) {
		start = 0
	}

	replicas := []string{}
	seen := map[string]bool{}
	for i := 0; i < len(sorted) && len(replicas) < rf; i++ {
		addr := sorted[(start+i)%len(sorted)].host.Address()
		if !seen[addr] {
			seen[addr] = true
			replicas = append(replicas, addr)
		}
	}
	return replicas
}

func simple(rf int) map[string]string {
	return map[string]string{"class": "SimpleStrategy", "replication_factor": strconv.Itoa(rf)}
}

func verify(t *testing.T, m *Impl, keyspace string, assignments []assignment, rf int) {
	for _, key := range testKeys {
		replicas, ok := m.GetReplicas(keyspace, []byte(key))
		require.True(t, ok, "no replicas for key %s", key)
		assert.Equal(t, expectedReplicas(m.Partitioner(), assignments, key, rf), host.Addresses(replicas), "key %s", key)
	}
}

func TestFromPartitioner(t *testing.T) {
	m, err := FromPartitioner("org.apache.cassandra.dht.Murmur3Partitioner")
	require.Nil(t, err)
	assert.Equal(t, partition.Murmur3PartitionerName, m.Partitioner().Name())

	m, err = FromPartitioner("CustomPartitioner")
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrUnknownPartitioner)
}

func threeMurmur3Hosts() []assignment {
	return []assignment{
		{strconv.FormatInt(math.MinInt64/2, 10), host.New("1.0.0.1:9042", "rack1", "dc1")},
		{"0", host.New("1.0.0.2:9042", "rack1", "dc1")},
		{strconv.FormatInt(math.MaxInt64/2, 10), host.New("1.0.0.3:9042", "rack1", "dc1")},
	}
}

func TestMurmur3(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	assignments := threeMurmur3Hosts()
	require.Nil(t, m.AddKeyspace("ks", simple(3)))
	populate(t, m, assignments)
	m.Build()

	verify(t, m, "ks", assignments, 3)
	for _, key := range testKeys {
		replicas, _ := m.GetReplicas("ks", []byte(key))
		assert.Len(t, replicas, 3)
	}
}

func TestMurmur3MultipleTokensPerHost(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	rng := rand.New(rand.NewSource(5489))
	assignments := []assignment{}
	for i := 1; i <= 4; i++ {
		h := host.New("1.0.0."+strconv.Itoa(i)+":9042", "rack1", "dc1")
		for j := 0; j < 256; j++ {
			assignments = append(assignments, assignment{strconv.FormatInt(int64(rng.Uint64()), 10), h})
		}
	}
	rng.Shuffle(len(assignments), func(i, j int) {
		assignments[i], assignments[j] = assignments[j], assignments[i]
	})
	require.Nil(t, m.AddKeyspace("ks", simple(3)))
	populate(t, m, assignments)
	m.Build()

	assert.Equal(t, 1024, m.Debug()["tokens"])
	verify(t, m, "ks", assignments, 3)
}

func TestRandom(t *testing.T) {
	m := newTestTokenMap(t, "RandomPartitioner")
	assignments := []assignment{
		{"42535295865117307932921825928971026432", host.New("1.0.0.1:9042", "rack1", "dc1")},
		{"85070591730234615865843651857942052864", host.New("1.0.0.2:9042", "rack1", "dc1")},
		{"127605887595351923798765477786913079296", host.New("1.0.0.3:9042", "rack1", "dc1")},
	}
	require.Nil(t, m.AddKeyspace("ks", simple(3)))
	populate(t, m, assignments)
	m.Build()

	verify(t, m, "ks", assignments, 3)
}

func TestByteOrdered(t *testing.T) {
	m := newTestTokenMap(t, "ByteOrderedPartitioner")
	assignments := []assignment{
		{"g", host.New("1.0.0.1:9042", "rack1", "dc1")},
		{"m", host.New("1.0.0.2:9042", "rack1", "dc1")},
		{"s", host.New("1.0.0.3:9042", "rack1", "dc1")},
	}
	require.Nil(t, m.AddKeyspace("ks", simple(3)))
	populate(t, m, assignments)
	m.Build()

	verify(t, m, "ks", assignments, 3)

	replicas, ok := m.GetReplicas("ks", []byte("h"))
	require.True(t, ok)
	assert.Equal(t, []string{"1.0.0.2:9042", "1.0.0.3:9042", "1.0.0.1:9042"}, host.Addresses(replicas))
	replicas, _ = m.GetReplicas("ks", []byte("z"))
	assert.Equal(t, "1.0.0.1:9042", replicas[0].Address())
	replicas, _ = m.GetReplicas("ks", []byte("m"))
	assert.Equal(t, "1.0.0.2:9042", replicas[0].Address())
}

func TestRemoveHost(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	assignments := threeMurmur3Hosts()
	require.Nil(t, m.AddKeyspace("ks", simple(2)))
	populate(t, m, assignments)
	m.Build()
	verify(t, m, "ks", assignments, 2)

	remaining := assignments
	for _, removed := range assignments[:2] {
		m.RemoveHostAndBuild(removed.host)
		remaining = remaining[1:]

		verify(t, m, "ks", remaining, 2)
		replicas, _ := m.GetReplicas("ks", []byte("abc"))
		assert.Len(t, replicas, len(remaining))
		for _, h := range replicas {
			assert.NotEqual(t, removed.host.Address(), h.Address())
		}
	}

	m.RemoveHostAndBuild(assignments[2].host)
	replicas, ok := m.GetReplicas("ks", []byte("abc"))
	assert.False(t, ok)
	assert.Nil(t, replicas)

	_, ok = m.GetReplicas("test", []byte("abc"))
	assert.False(t, ok)
}

func TestMutationsWaitForBuild(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	require.Nil(t, m.AddKeyspace("ks", simple(2)))
	populate(t, m, threeMurmur3Hosts())

	_, ok := m.GetReplicas("ks", []byte("abc"))
	assert.False(t, ok, "lookups must not see unbuilt state")

	m.Build()
	_, ok = m.GetReplicas("ks", []byte("abc"))
	assert.True(t, ok)

	m.RemoveHost(threeMurmur3Hosts()[0].host)
	replicas, _ := m.GetReplicas("ks", []byte("def"))
	assert.Len(t, replicas, 2)
}

func TestDropKeyspace(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	require.Nil(t, m.AddKeyspace("ks", simple(2)))
	require.Nil(t, m.AddKeyspace("other", simple(1)))
	populate(t, m, threeMurmur3Hosts())
	m.Build()
	assert.Equal(t, []string{"ks", "other"}, m.Keyspaces())

	m.DropKeyspace("ks")
	_, ok := m.GetReplicas("ks", []byte("abc"))
	assert.False(t, ok)
	assert.Equal(t, []string{"other"}, m.Keyspaces())

	// stays dropped across builds
	m.Build()
	_, ok = m.GetReplicas("ks", []byte("abc"))
	assert.False(t, ok)
	_, ok = m.GetReplicas("other", []byte("abc"))
	assert.True(t, ok)
}

func TestUnknownReplicationClass(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	populate(t, m, threeMurmur3Hosts())
	require.Nil(t, m.AddKeyspace("ks", simple(2)))
	m.Build()

	err := m.UpdateKeyspace("ks", map[string]string{"class": "org.apache.cassandra.locator.LocalStrategy"})
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	m.Build()
	_, ok := m.GetReplicas("ks", []byte("abc"))
	assert.False(t, ok)
}

func TestBuildRebuildsOnlyDirtyKeyspaces(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	populate(t, m, threeMurmur3Hosts())
	require.Nil(t, m.AddKeyspace("ks1", simple(1)))
	require.Nil(t, m.AddKeyspace("ks2", simple(1)))
	m.Build()
	before := m.current.Load()

	require.Nil(t, m.UpdateKeyspace("ks2", simple(3)))
	m.Build()
	after := m.current.Load()
	assert.Same(t, before.tables["ks1"], after.tables["ks1"])
	assert.NotSame(t, before.tables["ks2"], after.tables["ks2"])
	replicas, _ := m.GetReplicas("ks2", []byte("abc"))
	assert.Len(t, replicas, 3)

	// a host change rebuilds every keyspace
	m.AddHostTokens(host.New("1.0.0.4:9042", "rack1", "dc1"), []string{"100"})
	m.Build()
	rebuilt := m.current.Load()
	assert.NotSame(t, after.tables["ks1"], rebuilt.tables["ks1"])
	assert.NotSame(t, after.tables["ks2"], rebuilt.tables["ks2"])
}

func TestBuildIdempotent(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	populate(t, m, threeMurmur3Hosts())
	require.Nil(t, m.AddKeyspace("ks", simple(2)))
	m.Build()
	checksum := m.Checksum()
	table := m.current.Load().tables["ks"]

	m.Build()
	assert.Equal(t, checksum, m.Checksum())
	assert.Same(t, table, m.current.Load().tables["ks"])

	// an identical map built from scratch has the same checksum
	other := newTestTokenMap(t, "Murmur3Partitioner")
	require.Nil(t, other.AddKeyspace("ks", simple(2)))
	populate(t, other, threeMurmur3Hosts())
	other.Build()
	assert.Equal(t, checksum, other.Checksum())

	require.Nil(t, other.UpdateKeyspace("ks", simple(3)))
	other.Build()
	assert.NotEqual(t, checksum, other.Checksum())
}

func TestSingleHost(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	h := host.New("1.0.0.1:9042", "rack1", "dc1")
	m.AddHostTokens(h, []string{"-100", "0", "100"})
	require.Nil(t, m.AddKeyspace("ks", simple(3)))
	m.Build()

	for _, key := range testKeys {
		replicas, ok := m.GetReplicas("ks", []byte(key))
		require.True(t, ok)
		assert.Equal(t, []string{"1.0.0.1:9042"}, host.Addresses(replicas))
	}
}

func TestAddHostKeepsPreviousTokens(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	require.Nil(t, m.AddKeyspace("ks", simple(1)))
	h1 := host.New("1.0.0.1:9042", "rack1", "dc1")
	h2 := host.New("1.0.0.2:9042", "rack1", "dc1")
	for _, token := range []string{"-100", "100"} {
		encoded, err := EncodeTokens([]string{token})
		require.Nil(t, err)
		m.AddHost(h1, encoded)
	}
	m.AddHostTokens(h2, []string{"0"})
	m.Build()

	assert.Equal(t, 3, m.Debug()["tokens"])
	replicas, ok := m.GetReplicasForToken("ks", partition.Murmur3Token(-200))
	require.True(t, ok)
	assert.Equal(t, []string{"1.0.0.1:9042"}, host.Addresses(replicas))
	replicas, _ = m.GetReplicasForToken("ks", partition.Murmur3Token(50))
	assert.Equal(t, []string{"1.0.0.1:9042"}, host.Addresses(replicas))

	// a malformed payload adds nothing and keeps what the host owns
	m.AddHost(h1, []byte{0, 0, 0, 5, 0, 0})
	m.Build()
	assert.Equal(t, 3, m.Debug()["tokens"])
}

func TestUpdateHost(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	require.Nil(t, m.AddKeyspace("ks", simple(1)))
	h1 := host.New("1.0.0.1:9042", "rack1", "dc1")
	h2 := host.New("1.0.0.2:9042", "rack1", "dc1")
	m.AddHostTokens(h1, []string{"-100", "100"})
	m.AddHostTokens(h2, []string{"0"})
	m.Build()

	encoded, err := EncodeTokens([]string{"200"})
	require.Nil(t, err)
	m.UpdateHostAndBuild(h1, encoded)

	assert.Equal(t, 2, m.Debug()["tokens"])
	replicas, ok := m.GetReplicasForToken("ks", partition.Murmur3Token(-200))
	require.True(t, ok)
	assert.Equal(t, []string{"1.0.0.2:9042"}, host.Addresses(replicas))
	replicas, _ = m.GetReplicasForToken("ks", partition.Murmur3Token(150))
	assert.Equal(t, []string{"1.0.0.1:9042"}, host.Addresses(replicas))

	m.UpdateHostTokens(h2, nil)
	m.Build()
	assert.Equal(t, 1, m.Debug()["tokens"])
}

func TestGetReplicasForTokenOfOtherPartitioner(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	require.Nil(t, m.AddKeyspace("ks", simple(1)))
	populate(t, m, threeMurmur3Hosts())
	m.Build()

	assert.NotPanics(t, func() {
		replicas, ok := m.GetReplicasForToken("ks", partition.RandomToken{Lo: 1})
		assert.False(t, ok)
		assert.Nil(t, replicas)
		_, ok = m.GetReplicasForToken("ks", partition.ByteOrderedToken("a"))
		assert.False(t, ok)
		_, ok = m.GetReplicasForToken("ks", nil)
		assert.False(t, ok)
	})
	_, ok := m.GetReplicasForToken("ks", partition.Murmur3Token(1))
	assert.True(t, ok)
}

func TestMalformedTokens(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	require.Nil(t, m.AddKeyspace("ks", simple(1)))
	m.AddHost(host.New("1.0.0.1:9042", "rack1", "dc1"), []byte{0, 0, 0, 5, 0, 0})
	m.AddHostTokens(host.New("1.0.0.2:9042", "rack1", "dc1"), []string{"not-a-number"})
	m.Build()

	// the first host has no token, the second one owns token 0
	assert.Equal(t, 1, m.Debug()["tokens"])
	replicas, ok := m.GetReplicas("ks", []byte("abc"))
	require.True(t, ok)
	assert.Equal(t, []string{"1.0.0.2:9042"}, host.Addresses(replicas))
}

func TestNetworkTopology(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	rng := rand.New(rand.NewSource(5489))
	replication := map[string]string{"class": "NetworkTopologyStrategy"}
	for i := 1; i <= 10; i++ {
		dc := "dc" + strconv.Itoa(i%3+1)
		rack := "rack" + strconv.Itoa(i%2+1)
		replication[dc] = "3"
		tokens := make([]string, 0, 32)
		for j := 0; j < 32; j++ {
			tokens = append(tokens, strconv.FormatInt(int64(rng.Uint64()), 10))
		}
		m.AddHostTokens(host.New("127.0.0."+strconv.Itoa(i)+":9042", rack, dc), tokens)
	}
	replication["dc9"] = "2"
	require.Nil(t, m.AddKeyspace("ks1", replication))
	m.Build()

	for i := 0; i < 200; i++ {
		replicas, ok := m.GetReplicas("ks1", []byte("key"+strconv.Itoa(i)))
		require.True(t, ok)
		perDC := map[string]int{}
		perRack := map[string]map[string]bool{}
		seen := map[string]bool{}
		for _, h := range replicas {
			assert.False(t, seen[h.Address()])
			seen[h.Address()] = true
			perDC[h.Datacenter()]++
			if perRack[h.Datacenter()] == nil {
				perRack[h.Datacenter()] = map[string]bool{}
			}
			perRack[h.Datacenter()][h.Rack()] = true
		}
		assert.Equal(t, map[string]int{"dc1": 3, "dc2": 3, "dc3": 3}, perDC)
		for dc, racks := range perRack {
			assert.Len(t, racks, 2, "replicas of %s use a single rack", dc)
		}
	}
}

func TestReplicasOutliveBuild(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	assignments := threeMurmur3Hosts()
	populate(t, m, assignments)
	require.Nil(t, m.AddKeyspace("ks", simple(3)))
	m.Build()

	held, _ := m.GetReplicas("ks", []byte("abc"))
	addresses := host.Addresses(held)
	m.RemoveHostAndBuild(assignments[0].host)

	assert.Equal(t, addresses, host.Addresses(held))
	current, _ := m.GetReplicas("ks", []byte("abc"))
	assert.Len(t, current, 2)
}

func TestConcurrentLookups(t *testing.T) {
	m := newTestTokenMap(t, "Murmur3Partitioner")
	assignments := threeMurmur3Hosts()
	populate(t, m, assignments)
	require.Nil(t, m.AddKeyspace("ks", simple(3)))
	m.Build()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				replicas, ok := m.GetReplicas("ks", []byte(strconv.Itoa(r*100000+i)))
				if !ok {
					t.Errorf("lookup missed during rebuild")
					return
				}
				if len(replicas) != 2 && len(replicas) != 3 {
					t.Errorf("unexpected replica count %d", len(replicas))
					return
				}
			}
		}(r)
	}

	for i := 0; i < 200; i++ {
		m.RemoveHostAndBuild(assignments[0].host)
		encoded, err := EncodeTokens([]string{assignments[0].token})
		require.Nil(t, err)
		m.AddHostAndBuild(assignments[0].host, encoded)
	}
	close(stop)
	wg.Wait()
}

func TestMetrics(t *testing.T) {
	registry := metrics.NewRegistry()
	m, err := New(&Config{Partitioner: "Murmur3Partitioner", Registry: registry, MetricsPrefix: "driver"})
	require.Nil(t, err)
	populate(t, m, threeMurmur3Hosts())
	require.Nil(t, m.AddKeyspace("ks", simple(1)))
	m.Build()

	m.GetReplicas("ks", []byte("abc"))
	m.GetReplicas("missing", []byte("abc"))
	m.GetReplicas("missing", []byte("def"))

	assert.Equal(t, int64(1), registry.Get("driver.build").(metrics.Timer).Count())
	assert.Equal(t, int64(1), registry.Get("driver.lookup.hit").(metrics.Counter).Count())
	assert.Equal(t, int64(2), registry.Get("driver.lookup.miss").(metrics.Counter).Count())
	assert.Equal(t, int64(3), registry.Get("driver.ring.tokens").(metrics.Gauge).Value())
	assert.Equal(t, int64(3), registry.Get("driver.ring.hosts").(metrics.Gauge).Value())
	assert.Equal(t, int64(1), registry.Get("driver.keyspaces").(metrics.Gauge).Value())
}

func TestDebug(t *testing.T) {
	m := newTestTokenMap(t, "RandomPartitioner")
	m.AddHostTokens(host.New("1.0.0.1:9042", "rack1", "dc1"), []string{"1", "2"})
	require.Nil(t, m.AddKeyspace("ks", map[string]string{"class": "NetworkTopologyStrategy", "dc1": "1"}))
	m.Build()

	debug := m.Debug()
	assert.Equal(t, "RandomPartitioner", debug["partitioner"])
	assert.Equal(t, 2, debug["tokens"])
	assert.Equal(t, 1, debug["hosts"])
	assert.Equal(t, map[string]string{"ks": "NetworkTopologyStrategy{dc1=1}"}, debug["keyspaces"])
	assert.Equal(t, m.Checksum(), debug["checksum"])
}

func BenchmarkTokenMap_GetReplicas(b *testing.B) {
	b.StopTimer()
	m, _ := FromPartitioner("Murmur3Partitioner")
	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 20; n++ {
		tokens := make([]string, 0, 256)
		for v := 0; v < 256; v++ {
			tokens = append(tokens, strconv.FormatInt(int64(rng.Uint64()), 10))
		}
		m.AddHostTokens(host.New("10.10.3."+strconv.Itoa(n)+":9042", "rack"+strconv.Itoa(n%3), "dc"+strconv.Itoa(n%2)), tokens)
	}
	_ = m.AddKeyspace("ks", map[string]string{"class": "NetworkTopologyStrategy", "dc0": "3", "dc1": "3"})
	m.Build()
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		_, _ = m.GetReplicas("ks", []byte("test"+strconv.Itoa(i)))
	}
}
