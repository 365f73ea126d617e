package ledger

import "testing"

func TestRemainingRoomFlatPosition(t *testing.T) {
	l := New(1000)

	if room := l.RemainingRoom("binance", "BTCUSDT", Buy); room != 1000 {
		t.Fatalf("buy room on flat position = %v, want 1000", room)
	}
	if room := l.RemainingRoom("binance", "BTCUSDT", Sell); room != 1000 {
		t.Fatalf("sell room on flat position = %v, want 1000", room)
	}
}

func TestRemainingRoomExtendingLongIsCapped(t *testing.T) {
	l := New(1000)
	l.ApplyUpdate("binance", "BTCUSDT", Buy, 600)

	if room := l.RemainingRoom("binance", "BTCUSDT", Buy); room != 400 {
		t.Fatalf("buy room at +600/1000 = %v, want 400", room)
	}
}

func TestRemainingRoomUnwindingLongExceedsCap(t *testing.T) {
	l := New(1000)
	l.ApplyUpdate("binance", "BTCUSDT", Buy, 1000)

	// fully long at the cap: a sell can flatten (1000) and then open a
	// short up to maxPosUsd, for 2*maxPosUsd of total room.
	room := l.RemainingRoom("binance", "BTCUSDT", Sell)
	if room != 2000 {
		t.Fatalf("sell room unwinding a full long = %v, want 2000", room)
	}
}

func TestRemainingRoomUnwindingShortExceedsCap(t *testing.T) {
	l := New(1000)
	l.ApplyUpdate("binance", "BTCUSDT", Sell, 1000)

	room := l.RemainingRoom("binance", "BTCUSDT", Buy)
	if room != 2000 {
		t.Fatalf("buy room unwinding a full short = %v, want 2000", room)
	}
}

func TestRemainingRoomExtendingShortIsCapped(t *testing.T) {
	l := New(1000)
	l.ApplyUpdate("binance", "BTCUSDT", Sell, 700)

	if room := l.RemainingRoom("binance", "BTCUSDT", Sell); room != 300 {
		t.Fatalf("sell room at -700/1000 = %v, want 300", room)
	}
}

func TestApplyUpdateRoundTripRestoresZero(t *testing.T) {
	l := New(1000)
	l.ApplyUpdate("bybit", "ETHUSDT", Buy, 250.5)
	got := l.ApplyUpdate("bybit", "ETHUSDT", Sell, 250.5)

	if got != 0 {
		t.Fatalf("buy then sell of equal size should restore 0, got %v", got)
	}
}

func TestApplyUpdateSnapsTinyResidueToZero(t *testing.T) {
	l := New(1000)
	l.ApplyUpdate("bybit", "ETHUSDT", Buy, 100.0000001)
	got := l.ApplyUpdate("bybit", "ETHUSDT", Sell, 100.0)

	if got != 0 {
		t.Fatalf("residue below 1e-6 should snap to 0, got %v", got)
	}
}

func TestExposureIndependentPerVenueAndSymbol(t *testing.T) {
	l := New(1000)
	l.ApplyUpdate("binance", "BTCUSDT", Buy, 500)
	l.ApplyUpdate("bybit", "BTCUSDT", Sell, 300)

	if e := l.Exposure("binance", "BTCUSDT"); e != 500 {
		t.Fatalf("binance exposure = %v, want 500", e)
	}
	if e := l.Exposure("bybit", "BTCUSDT"); e != -300 {
		t.Fatalf("bybit exposure = %v, want -300", e)
	}
	if e := l.Exposure("binance", "ETHUSDT"); e != 0 {
		t.Fatalf("untouched pair exposure = %v, want 0", e)
	}
}
