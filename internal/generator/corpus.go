package generator

import "github.com/MosYCo/test-data-generate/internal/task"

// corpus holds locale-specific word lists used for text heuristics.
type corpus struct {
	givenNames []string
	surnames   []string
	cities     []string
	streets    []string
	words      []string
	domains    []string
	phone      func(r *source) string
	fullName   func(given, surname string) string
}

var englishCorpus = corpus{
	givenNames: []string{"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica", "Thomas", "Sarah", "Daniel", "Karen"},
	surnames:   []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez", "Wilson", "Anderson", "Taylor", "Thomas", "Moore", "Jackson", "Martin", "Lee", "Thompson", "White"},
	cities:     []string{"New York", "London", "Toronto", "Sydney", "Chicago", "Seattle", "Boston", "Denver", "Austin", "Dublin", "Manchester", "Vancouver", "Melbourne", "Portland", "Atlanta"},
	streets:    []string{"Main St", "Oak Ave", "Maple Rd", "Cedar Ln", "Park Blvd", "Elm St", "Pine Dr", "Lake Rd", "Hill St", "River Rd"},
	words:      []string{"alpha", "bravo", "coral", "delta", "ember", "falcon", "garnet", "harbor", "indigo", "juniper", "kestrel", "lumen", "meadow", "nimbus", "orchid", "prism", "quartz", "raven", "summit", "tundra"},
	domains:    []string{"example.com", "example.org", "example.net", "mail.test"},
	phone: func(r *source) string {
		return "+1-" + r.digits(3) + "-" + r.digits(3) + "-" + r.digits(4)
	},
	fullName: func(given, surname string) string { return given + " " + surname },
}

var chineseCorpus = corpus{
	givenNames: []string{"伟", "芳", "娜", "敏", "静", "丽", "强", "磊", "军", "洋", "勇", "艳", "杰", "娟", "涛", "明", "超", "秀英", "霞", "平"},
	surnames:   []string{"王", "李", "张", "刘", "陈", "杨", "黄", "赵", "吴", "周", "徐", "孙", "马", "朱", "胡", "郭", "何", "高", "林", "罗"},
	cities:     []string{"北京", "上海", "广州", "深圳", "杭州", "成都", "南京", "武汉", "西安", "重庆", "苏州", "天津", "长沙", "郑州", "青岛"},
	streets:    []string{"人民路", "中山路", "解放路", "建设路", "和平路", "长江路", "新华路", "文化路", "胜利路", "光明路"},
	words:      []string{"春", "夏", "秋", "冬", "山", "水", "云", "风", "花", "月", "星", "海", "林", "石", "雪", "光", "河", "田", "竹", "松"},
	domains:    []string{"example.cn", "example.com", "mail.test"},
	phone: func(r *source) string {
		prefixes := []string{"130", "135", "138", "150", "158", "186", "189"}
		return prefixes[r.IntN(len(prefixes))] + r.digits(8)
	},
	fullName: func(given, surname string) string { return surname + given },
}

// Romanized names keep emails ASCII for any locale
var emailLocalParts = []string{"alex", "sam", "chris", "jordan", "taylor", "morgan", "casey", "jamie", "riley", "quinn", "li.wei", "wang.fang", "zhang.min", "chen.jie"}

func corpusFor(lang string) *corpus {
	if task.IsChinese(lang) {
		return &chineseCorpus
	}
	return &englishCorpus
}
