package migrate

import (
	"fmt"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// FetchBar renders FetchAllContent progress.  Update has the wordpress.ProgressFunc signature.
type FetchBar struct {
	bar *mpb.Bar
}

func NewFetchBar(p *mpb.Progress, name string) *FetchBar {
	// total is unknown until the first page arrives
	bar := p.AddBar(0,
		mpb.PrependDecorators(
			decor.Name(fmt.Sprintf("%s:", name), decor.WC{C: decor.DindentRight | decor.DextraSpace}),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d/%d) "),
			decor.NewPercentage("%d"),
		),
	)
	return &FetchBar{bar: bar}
}

func (f *FetchBar) Update(loaded, total int) {
	if total < loaded {
		total = loaded
	}
	f.bar.SetTotal(int64(total), false)
	f.bar.SetCurrent(int64(loaded))
}

// Finish completes the bar, or drops it when the fetch failed, so that (*mpb.Progress).Wait
// returns either way.
func (f *FetchBar) Finish(err error) {
	if err != nil {
		f.bar.Abort(false)
		return
	}
	f.bar.SetTotal(-1, true)
}

// BatchBar ticks once for every item reaching a terminal state.  OnStatus fits Batch.OnStatus.
type BatchBar struct {
	bar *mpb.Bar
}

func NewBatchBar(p *mpb.Progress, name string, total int) *BatchBar {
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(fmt.Sprintf("%s:", name), decor.WC{C: decor.DindentRight | decor.DextraSpace}),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d/%d) "),
			decor.NewPercentage("%d"),
			decor.Spinner([]string{" /", " -", " \\", " |"}),
		),
	)
	return &BatchBar{bar: bar}
}

func (b *BatchBar) OnStatus(id int, status TransferStatus) {
	if status.Terminal() {
		b.bar.Increment()
	}
}

// Finish drops the bar if the batch stopped before every item finished.
func (b *BatchBar) Finish() {
	if !b.bar.Completed() {
		b.bar.Abort(false)
	}
}
