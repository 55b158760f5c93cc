package pipeline

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tenderlink/analysis"
	"tenderlink/database"
	"tenderlink/grouping"
	"tenderlink/importer"
	"tenderlink/internal/config"
	"tenderlink/linking"
	"tenderlink/normalization"
	"tenderlink/quality"
)

// Pipeline конвейер: очистка -> группировка -> связывание -> анализ ->
// отчет о качестве. Каждый слой читает предыдущий и только добавляет
// колонки; исходные данные не изменяются никогда.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *database.Store // nil — без сохранения в БД
}

// New создает конвейер. store может быть nil, тогда результаты анализа
// не сохраняются в хранилище сервера.
func New(cfg *config.Config, logger *slog.Logger, store *database.Store) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger, store: store}
}

// CleanIntermediate удаляет промежуточные каталоги перед полным пересчетом.
// Каталог исходных данных не затрагивается.
func (p *Pipeline) CleanIntermediate() error {
	for _, dir := range p.cfg.IntermediateDirs() {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("не удалось очистить %s: %w", dir, err)
		}
		p.logger.Info("каталог очищен", "dir", dir)
	}
	return nil
}

// RunAll выполняет все этапы по порядку
func (p *Pipeline) RunAll(clean bool) error {
	if clean {
		if err := p.CleanIntermediate(); err != nil {
			return err
		}
	}
	for _, step := range []struct {
		name string
		run  func() error
	}{
		{"clean", p.RunClean},
		{"group", p.RunGroup},
		{"link", p.RunLink},
		{"analysis", p.RunAnalysis},
		{"quality", p.RunQuality},
	} {
		p.logger.Info("этап начат", "stage", step.name)
		if err := step.run(); err != nil {
			return fmt.Errorf("этап %s: %w", step.name, err)
		}
		p.logger.Info("этап завершен", "stage", step.name)
	}
	return nil
}

// stageInput читает входной слой этапа; отсутствие файла — не авария
// конвейера, а подсказка пользователю, какой этап выполнить раньше
func stageInput(path, priorStage string) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("не найден файл %s, сначала выполните этап %s", path, priorStage)
	}
	return ReadCSV(path)
}

// RunClean читает выгрузки 天眼查 из каталога данных (и, если настроен
// html_dir, сохраненные HTML-страницы объявлений) и строит слой очистки:
// тип записи, ядро названия, разбор суммы. Все исходные колонки сохраняются.
func (p *Pipeline) RunClean() error {
	entries, err := os.ReadDir(p.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("не удалось прочитать каталог %s: %w", p.cfg.DataDir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".xlsx") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	htmlRecs, err := p.loadHTMLAnnouncements()
	if err != nil {
		return err
	}
	if len(files) == 0 && len(htmlRecs) == 0 {
		return fmt.Errorf("в каталоге %s нет файлов .xlsx, HTML-источник пуст или не настроен", p.cfg.DataDir)
	}

	type loaded struct {
		sheet    *importer.Sheet
		customer string
		file     string
	}
	var sheets []loaded
	var unionCols []string
	colPos := make(map[string]int)

	for _, name := range files {
		sheet, err := importer.ParseTianyanchaExcel(filepath.Join(p.cfg.DataDir, name))
		if err != nil {
			return fmt.Errorf("файл %s: %w", name, err)
		}
		for _, c := range sheet.Columns {
			if _, ok := colPos[c]; !ok && c != "" {
				colPos[c] = len(unionCols)
				unionCols = append(unionCols, c)
			}
		}
		sheets = append(sheets, loaded{
			sheet:    sheet,
			customer: importer.CustomerFromFilename(name),
			file:     name,
		})
	}

	if len(htmlRecs) > 0 {
		for _, c := range []string{
			importer.ColumnProjectName, importer.ColumnPublishDate,
			importer.ColumnAwardee, importer.ColumnAmount,
		} {
			if _, ok := colPos[c]; !ok {
				colPos[c] = len(unionCols)
				unionCols = append(unionCols, c)
			}
		}
	}

	combined := &Table{Columns: unionCols}
	var recordTypes, cores, amounts, units, missings, customers, sources []string

	for _, l := range sheets {
		nameIdx := l.sheet.ProjectNameIndex()
		amountIdx := l.sheet.AmountIndex()
		for _, row := range l.sheet.Rows {
			values := make([]string, len(unionCols))
			for si, col := range l.sheet.Columns {
				if pos, ok := colPos[col]; ok && si < len(row) {
					values[pos] = row[si]
				}
			}
			combined.Rows = append(combined.Rows, values)

			title := l.sheet.Cell(row, nameIdx)
			amount := normalization.ParseAmount(l.sheet.Cell(row, amountIdx))

			recordTypes = append(recordTypes, normalization.ParseRecordType(title))
			cores = append(cores, normalization.ParseProjectNameCore(title))
			amounts = append(amounts, formatAmount(amount))
			units = append(units, amount.Unit)
			missings = append(missings, strconv.FormatBool(amount.Missing))
			customers = append(customers, l.customer)
			sources = append(sources, l.file)
		}
	}

	for _, h := range htmlRecs {
		values := make([]string, len(unionCols))
		values[colPos[importer.ColumnProjectName]] = h.ann.Title
		values[colPos[importer.ColumnPublishDate]] = h.ann.PublishDate
		values[colPos[importer.ColumnAwardee]] = h.ann.Awardee
		values[colPos[importer.ColumnAmount]] = h.ann.AmountRaw
		combined.Rows = append(combined.Rows, values)

		amount := normalization.ParseAmount(h.ann.AmountRaw)
		recordTypes = append(recordTypes, normalization.ParseRecordType(h.ann.Title))
		cores = append(cores, normalization.ParseProjectNameCore(h.ann.Title))
		amounts = append(amounts, formatAmount(amount))
		units = append(units, amount.Unit)
		missings = append(missings, strconv.FormatBool(amount.Missing))
		customers = append(customers, h.customer)
		sources = append(sources, h.file)
	}

	for _, col := range []struct {
		name   string
		values []string
	}{
		{ColRecordType, recordTypes},
		{ColProjectNameCore, cores},
		{ColAmountWanYuan, amounts},
		{ColAmountUnit, units},
		{ColAmountMissing, missings},
		{ColCustomer, customers},
		{ColSourceFile, sources},
	} {
		if err := combined.AddColumn(col.name, col.values); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(p.cfg.CleanedDir, 0o755); err != nil {
		return err
	}
	if err := WriteCSV(filepath.Join(p.cfg.CleanedDir, CleanedFile), combined); err != nil {
		return err
	}
	if err := p.writePerCustomer(combined, p.cfg.CleanedDir); err != nil {
		return err
	}

	p.logger.Info("слой очистки записан",
		"records", len(combined.Rows), "files", len(files), "html", len(htmlRecs))
	return nil
}

// htmlRecord объявление из HTML-страницы с привязкой к клиенту
type htmlRecord struct {
	customer string
	file     string
	ann      *importer.Announcement
}

// loadHTMLAnnouncements читает сохраненные страницы объявлений из
// html_dir/<клиент>/*.html. Отсутствие каталога не ошибка: источник
// опционален и дополняет выгрузки 天眼查.
func (p *Pipeline) loadHTMLAnnouncements() ([]htmlRecord, error) {
	if p.cfg.HTMLDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(p.cfg.HTMLDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать каталог %s: %w", p.cfg.HTMLDir, err)
	}

	var recs []htmlRecord
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		customer := e.Name()
		pages, err := os.ReadDir(filepath.Join(p.cfg.HTMLDir, customer))
		if err != nil {
			return nil, fmt.Errorf("клиент %s: %w", customer, err)
		}
		for _, pg := range pages {
			if pg.IsDir() || !strings.HasSuffix(pg.Name(), ".html") {
				continue
			}
			path := filepath.Join(p.cfg.HTMLDir, customer, pg.Name())
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("файл %s: %w", path, err)
			}
			ann, parseErr := importer.ParseAnnouncementHTML(f)
			f.Close()
			if parseErr != nil {
				return nil, fmt.Errorf("файл %s: %w", path, parseErr)
			}
			recs = append(recs, htmlRecord{
				customer: customer,
				file:     filepath.Join(customer, pg.Name()),
				ann:      ann,
			})
		}
	}
	return recs, nil
}

// RunGroup назначает записям project_id и tender_round поверх слоя очистки
func (p *Pipeline) RunGroup() error {
	cleaned, err := stageInput(filepath.Join(p.cfg.CleanedDir, CleanedFile), "clean")
	if err != nil {
		return err
	}

	titleIdx := projectNameColumn(cleaned)
	items := make([]grouping.Item, len(cleaned.Rows))
	for i := range cleaned.Rows {
		items[i] = grouping.Item{
			Customer: cleaned.ValueByName(i, ColCustomer),
			CoreName: cleaned.ValueByName(i, ColProjectNameCore),
			RawTitle: cleaned.Value(i, titleIdx),
		}
	}

	assigner := grouping.NewAssigner(p.cfg.ClusterOptions())
	assignments := assigner.Assign(items)

	projectIDs := make([]string, len(assignments))
	rounds := make([]string, len(assignments))
	for i, a := range assignments {
		projectIDs[i] = a.ProjectID
		rounds[i] = strconv.Itoa(a.TenderRound)
	}
	if err := cleaned.AddColumn(ColProjectID, projectIDs); err != nil {
		return err
	}
	if err := cleaned.AddColumn(ColTenderRound, rounds); err != nil {
		return err
	}

	if err := os.MkdirAll(p.cfg.GroupedDir, 0o755); err != nil {
		return err
	}
	if err := WriteCSV(filepath.Join(p.cfg.GroupedDir, GroupedFile), cleaned); err != nil {
		return err
	}
	if err := p.writePerCustomer(cleaned, p.cfg.GroupedDir); err != nil {
		return err
	}

	p.logger.Info("слой группировки записан",
		"records", len(cleaned.Rows),
		"projects", countDistinct(projectIDs))
	return nil
}

// RunLink связывает 招标 и 中标 внутри проектов и строит таблицу связей
func (p *Pipeline) RunLink() error {
	grouped, err := stageInput(filepath.Join(p.cfg.GroupedDir, GroupedFile), "group")
	if err != nil {
		return err
	}

	rows := linkingRows(grouped)
	links := linking.AssignLinks(rows)

	rowIDs := make([]string, len(links))
	linkTypes := make([]string, len(links))
	relatedTenders := make([]string, len(links))
	relatedBids := make([]string, len(links))
	for i, l := range links {
		rowIDs[i] = l.RowID
		linkTypes[i] = l.LinkType
		relatedTenders[i] = l.RelatedTenderID
		relatedBids[i] = l.RelatedBidID
	}
	for _, col := range []struct {
		name   string
		values []string
	}{
		{ColRowID, rowIDs},
		{ColLinkType, linkTypes},
		{ColRelatedTenderID, relatedTenders},
		{ColRelatedBidID, relatedBids},
	} {
		if err := grouped.AddColumn(col.name, col.values); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(p.cfg.LinkedDir, 0o755); err != nil {
		return err
	}
	if err := WriteCSV(filepath.Join(p.cfg.LinkedDir, LinkedFile), grouped); err != nil {
		return err
	}

	pairs := linking.BuildLinkTable(rows, links)
	if err := WriteCSV(filepath.Join(p.cfg.LinkedDir, LinkTableFile), linkTableToTable(pairs)); err != nil {
		return err
	}
	if err := p.writePerCustomer(grouped, p.cfg.LinkedDir); err != nil {
		return err
	}

	p.logger.Info("слой связывания записан",
		"records", len(grouped.Rows), "linked_pairs", len(pairs))
	return nil
}

// RunAnalysis помечает записи is_ai / is_llm / llm_layer и сохраняет
// итоговый слой в хранилище сервера
func (p *Pipeline) RunAnalysis() error {
	linked, err := stageInput(filepath.Join(p.cfg.LinkedDir, LinkedFile), "link")
	if err != nil {
		return err
	}

	titleIdx := projectNameColumn(linked)
	isAI := make([]string, len(linked.Rows))
	isLLM := make([]string, len(linked.Rows))
	layers := make([]string, len(linked.Rows))
	for i := range linked.Rows {
		tags := analysis.Tag(linked.Value(i, titleIdx), linked.ValueByName(i, ColProjectNameCore))
		isAI[i] = strconv.FormatBool(tags.IsAI)
		isLLM[i] = strconv.FormatBool(tags.IsLLM)
		layers[i] = tags.LLMLayer
	}
	for _, col := range []struct {
		name   string
		values []string
	}{
		{ColIsAI, isAI},
		{ColIsLLM, isLLM},
		{ColLLMLayer, layers},
	} {
		if err := linked.AddColumn(col.name, col.values); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(p.cfg.AnalysisDir, 0o755); err != nil {
		return err
	}
	if err := WriteCSV(filepath.Join(p.cfg.AnalysisDir, AnalysisFile), linked); err != nil {
		return err
	}
	if err := p.writePerCustomer(linked, p.cfg.AnalysisDir); err != nil {
		return err
	}

	if p.store != nil {
		runID := uuid.New().String()
		if err := p.persist(runID, linked); err != nil {
			return err
		}
		p.logger.Info("результаты сохранены в хранилище", "run_id", runID)
	}

	p.logger.Info("слой анализа записан", "records", len(linked.Rows))
	return nil
}

// RunQuality строит отчет о качестве поверх слоя связывания
// (или группировки, если связывание еще не выполнялось)
func (p *Pipeline) RunQuality() error {
	table, err := stageInput(filepath.Join(p.cfg.LinkedDir, LinkedFile), "link")
	if err != nil {
		table, err = stageInput(filepath.Join(p.cfg.GroupedDir, GroupedFile), "group")
		if err != nil {
			return fmt.Errorf("нет ни слоя связывания, ни слоя группировки: выполните этап link или group")
		}
	}

	rows := qualityRows(table)
	if err := p.writeQualityOutputs(rows); err != nil {
		return err
	}

	p.logger.Info("отчет о качестве записан", "records", len(rows))
	return nil
}

// persist сохраняет итоговый слой и таблицу связей в хранилище
func (p *Pipeline) persist(runID string, table *Table) error {
	records := make([]database.StoredRecord, len(table.Rows))
	titleIdx := projectNameColumn(table)
	for i := range table.Rows {
		records[i] = database.StoredRecord{
			RowID:           table.ValueByName(i, ColRowID),
			Customer:        table.ValueByName(i, ColCustomer),
			SourceFile:      table.ValueByName(i, ColSourceFile),
			Title:           table.Value(i, titleIdx),
			PublishDate:     table.ValueByName(i, importer.ColumnPublishDate),
			RecordType:      table.ValueByName(i, ColRecordType),
			ProjectNameCore: table.ValueByName(i, ColProjectNameCore),
			AmountWanYuan:   nullFloat(table.ValueByName(i, ColAmountWanYuan)),
			AmountUnit:      table.ValueByName(i, ColAmountUnit),
			AmountMissing:   parseBool(table.ValueByName(i, ColAmountMissing)),
			ProjectID:       table.ValueByName(i, ColProjectID),
			TenderRound:     parseIntDefault(table.ValueByName(i, ColTenderRound), 1),
			LinkType:        table.ValueByName(i, ColLinkType),
			RelatedTenderID: table.ValueByName(i, ColRelatedTenderID),
			RelatedBidID:    table.ValueByName(i, ColRelatedBidID),
			Awardee:         table.ValueByName(i, importer.ColumnAwardee),
			IsAI:            parseBool(table.ValueByName(i, ColIsAI)),
			IsLLM:           parseBool(table.ValueByName(i, ColIsLLM)),
			LLMLayer:        table.ValueByName(i, ColLLMLayer),
		}
	}

	linkTable, err := ReadCSV(filepath.Join(p.cfg.LinkedDir, LinkTableFile))
	if err != nil {
		return fmt.Errorf("не удалось прочитать таблицу связей: %w", err)
	}
	pairs := make([]database.StoredLinkPair, len(linkTable.Rows))
	for i := range linkTable.Rows {
		pairs[i] = database.StoredLinkPair{
			ProjectID:     linkTable.ValueByName(i, ColProjectID),
			TenderRowID:   linkTable.ValueByName(i, "tender_row_id"),
			BidRowID:      linkTable.ValueByName(i, "bid_row_id"),
			TenderRound:   parseIntDefault(linkTable.ValueByName(i, ColTenderRound), 1),
			PublishDate:   linkTable.ValueByName(i, "publish_date"),
			Awardee:       linkTable.ValueByName(i, "awardee"),
			AmountWanYuan: nullFloat(linkTable.ValueByName(i, ColAmountWanYuan)),
		}
	}

	return p.store.SaveRun(runID, records, pairs)
}

// writePerCustomer пишет срез таблицы на каждого клиента отдельным файлом
func (p *Pipeline) writePerCustomer(t *Table, dir string) error {
	custIdx := t.ColumnIndex(ColCustomer)
	if custIdx < 0 {
		return nil
	}
	seen := make(map[string]bool)
	var customers []string
	for i := range t.Rows {
		c := t.Value(i, custIdx)
		if !seen[c] {
			seen[c] = true
			customers = append(customers, c)
		}
	}
	for _, customer := range customers {
		sub := t.FilterRows(func(row int) bool { return t.Value(row, custIdx) == customer })
		path := filepath.Join(dir, safeFileName(customer)+".csv")
		if err := WriteCSV(path, sub); err != nil {
			return fmt.Errorf("клиент %s: %w", customer, err)
		}
	}
	return nil
}

// projectNameColumn колонка названия проекта: точное имя, иначе первая
// колонка с 项目 или 名称 в имени
func projectNameColumn(t *Table) int {
	if i := t.ColumnIndex(importer.ColumnProjectName); i >= 0 {
		return i
	}
	for i, c := range t.Columns {
		if strings.Contains(c, "项目") || strings.Contains(c, "名称") {
			return i
		}
	}
	return -1
}

// linkingRows собирает вход связывания из слоя группировки
func linkingRows(t *Table) []linking.Row {
	rows := make([]linking.Row, len(t.Rows))
	for i := range t.Rows {
		amountStr := t.ValueByName(i, ColAmountWanYuan)
		amount, amountErr := strconv.ParseFloat(amountStr, 64)
		rows[i] = linking.Row{
			ProjectID:     t.ValueByName(i, ColProjectID),
			RecordType:    t.ValueByName(i, ColRecordType),
			PublishDate:   t.ValueByName(i, importer.ColumnPublishDate),
			TenderRound:   parseIntDefault(t.ValueByName(i, ColTenderRound), 1),
			Awardee:       t.ValueByName(i, importer.ColumnAwardee),
			AmountWanYuan: amount,
			AmountMissing: amountStr == "" || amountErr != nil || parseBool(t.ValueByName(i, ColAmountMissing)),
		}
	}
	return rows
}

// qualityRows собирает вход отчета о качестве
func qualityRows(t *Table) []quality.Row {
	rows := make([]quality.Row, len(t.Rows))
	for i := range t.Rows {
		rows[i] = quality.Row{
			Customer:      t.ValueByName(i, ColCustomer),
			RecordType:    t.ValueByName(i, ColRecordType),
			ProjectID:     t.ValueByName(i, ColProjectID),
			CoreName:      t.ValueByName(i, ColProjectNameCore),
			AmountUnit:    t.ValueByName(i, ColAmountUnit),
			AmountMissing: parseBool(t.ValueByName(i, ColAmountMissing)),
		}
	}
	return rows
}

// linkTableToTable таблица связей в табличном виде для CSV
func linkTableToTable(pairs []linking.LinkPair) *Table {
	t := &Table{Columns: []string{
		ColProjectID, "tender_row_id", "bid_row_id", ColTenderRound,
		"publish_date", "awardee", ColAmountWanYuan,
	}}
	for _, p := range pairs {
		amount := ""
		if !p.AmountMissing {
			amount = strconv.FormatFloat(p.AmountWanYuan, 'f', -1, 64)
		}
		t.Rows = append(t.Rows, []string{
			p.ProjectID, p.TenderRowID, p.BidRowID, strconv.Itoa(p.TenderRound),
			p.PublishDate, p.Awardee, amount,
		})
	}
	return t
}

func formatAmount(a normalization.Amount) string {
	if a.Missing {
		return ""
	}
	return strconv.FormatFloat(a.WanYuan, 'f', -1, 64)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func parseIntDefault(s string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return def
}

func nullFloat(s string) (nf sql.NullFloat64) {
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		nf.Float64 = v
		nf.Valid = true
	}
	return nf
}

func countDistinct(values []string) int {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[v] = true
	}
	return len(seen)
}
