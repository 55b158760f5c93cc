package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/xuri/excelize/v2"
)

// Генератор синтетических выгрузок 天眼查 для прогонов конвейера.
// Каждому клиенту создается один xlsx-файл с именем по шаблону выгрузки,
// шапкой экспорта и парами объявлений 招标/中标.

var customers = []string{
	"中国移动通信集团",
	"国家电网有限公司",
	"中国石油化工集团",
	"中国建设银行股份有限公司",
	"华润集团有限公司",
}

var projectTopics = []string{
	"大模型训练平台建设",
	"智算中心算力扩容",
	"数据中台升级改造",
	"办公楼装修改造工程",
	"网络安全设备采购",
	"AI智能客服系统建设",
	"GPU服务器集群采购",
	"知识库问答系统开发",
	"视频会议系统维保服务",
	"机房UPS电源采购",
}

var roundSuffixes = []string{"", "（第二次）", "(第三次)", "第2次"}

var awardees = []string{
	"华为技术有限公司",
	"浪潮电子信息产业股份有限公司",
	"科大讯飞股份有限公司",
	"中兴通讯股份有限公司",
	"东软集团股份有限公司",
}

func main() {
	outDir := flag.String("out", "data", "каталог для сгенерированных выгрузок")
	perCustomer := flag.Int("n", 40, "число проектов на клиента")
	seed := flag.Int64("seed", 0, "сид генератора, 0 — детерминированный набор")
	flag.Parse()

	gofakeit.Seed(*seed)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Не удалось создать каталог %s: %v", *outDir, err)
	}

	for i, customer := range customers {
		filename := fmt.Sprintf("【天眼查】招投标(不包含拟建)-%s(%d).xlsx", customer, 1000+i)
		path := filepath.Join(*outDir, filename)
		if err := writeWorkbook(path, customer, *perCustomer); err != nil {
			log.Fatalf("Не удалось записать %s: %v", path, err)
		}
		log.Printf("Записан файл: %s", path)
	}

	log.Println("✅ Генерация тестовых данных завершена")
}

// writeWorkbook пишет один файл выгрузки: шесть строк шапки экспорта,
// строка заголовков и строки объявлений
func writeWorkbook(path, customer string, projects int) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	preamble := [][]interface{}{
		{"天眼查数据导出"},
		{"导出时间", time.Now().Format("2006-01-02 15:04:05")},
		{"查询对象", customer},
		{"数据范围", "招投标(不包含拟建)"},
		{},
		{},
	}
	row := 1
	for _, values := range preamble {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
	}

	header := []interface{}{"序号", "项目名称", "发布日期", "公告类型", "中标单位", "中标金额"}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		return err
	}
	row++

	seq := 1
	for i := 0; i < projects; i++ {
		topic := projectTopics[gofakeit.Number(0, len(projectTopics)-1)]
		round := roundSuffixes[gofakeit.Number(0, len(roundSuffixes)-1)]
		project := fmt.Sprintf("%s%s项目%s", customer, topic, round)
		publish := gofakeit.DateRange(
			time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		)

		tender := []interface{}{
			seq, project + "招标公告", publish.Format("2006-01-02"), "招标公告", "", "",
		}
		cell, _ = excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &tender); err != nil {
			return err
		}
		row++
		seq++

		// Часть тендеров остается без результата
		if gofakeit.Number(0, 9) < 8 {
			amount := fmt.Sprintf("%.2f万元", gofakeit.Float64Range(10, 5000))
			if gofakeit.Number(0, 9) < 2 {
				amount = ""
			}
			bid := []interface{}{
				seq,
				project + "中标公告",
				publish.AddDate(0, 0, gofakeit.Number(7, 90)).Format("2006-01-02"),
				"中标公告",
				awardees[gofakeit.Number(0, len(awardees)-1)],
				amount,
			}
			cell, _ = excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(sheet, cell, &bid); err != nil {
				return err
			}
			row++
			seq++
		}
	}

	return f.SaveAs(path)
}
