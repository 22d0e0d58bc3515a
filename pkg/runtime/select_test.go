package runtime

import (
	"errors"
	"testing"
	"time"
)

func TestSelectFiresReadyReceive(t *testing.T) {
	reg := NewChannelRegistry()
	one := 1
	idle := reg.Create("i32", &one)
	ready := reg.Create("i32", &one)

	ch, _ := reg.Get(ready)
	if result := ch.TrySend(i32(5)); result != SendOk {
		t.Fatalf("priming send failed: %v", result)
	}

	result, err := SelectChannels(reg, []SelectOp{
		{ChannelID: idle},
		{ChannelID: ready},
	}, nil)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if result.Index != 1 {
		t.Fatalf("expected case 1 to fire, got %d", result.Index)
	}
	if iv, ok := result.Value.(IntegerValue); !ok || iv.Val.Cmp(bigInt(5)) != 0 {
		t.Fatalf("expected received 5, got %#v", result.Value)
	}
}

func TestSelectSendCase(t *testing.T) {
	reg := NewChannelRegistry()
	one := 1
	id := reg.Create("i32", &one)

	result, err := SelectChannels(reg, []SelectOp{
		{ChannelID: id, IsSend: true, SendValue: i32(3)},
	}, nil)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if result.Index != 0 || result.Closed {
		t.Fatalf("expected send case to fire cleanly, got %+v", result)
	}

	ch, _ := reg.Get(id)
	mustReceiveInt(t, ch, 3)
}

func TestSelectTimesOut(t *testing.T) {
	reg := NewChannelRegistry()
	one := 1
	id := reg.Create("i32", &one)

	timeout := 40 * time.Millisecond
	start := time.Now()
	result, err := SelectChannels(reg, []SelectOp{{ChannelID: id}}, &timeout)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if result.Index != -1 {
		t.Fatalf("expected timeout marker, got index %d", result.Index)
	}
	if elapsed := time.Since(start); elapsed < timeout {
		t.Fatalf("select returned before the timeout, after %v", elapsed)
	}
}

func TestSelectReportsClosedCase(t *testing.T) {
	reg := NewChannelRegistry()
	one := 1
	id := reg.Create("i32", &one)
	ch, _ := reg.Get(id)
	if err := ch.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	result, err := SelectChannels(reg, []SelectOp{{ChannelID: id}}, nil)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if result.Index != 0 || !result.Closed {
		t.Fatalf("expected closed case 0, got %+v", result)
	}
}

func TestSelectUnknownChannel(t *testing.T) {
	reg := NewChannelRegistry()
	_, err := SelectChannels(reg, []SelectOp{{ChannelID: 77}}, nil)
	if !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("expected ErrChannelNotFound, got %v", err)
	}
}
